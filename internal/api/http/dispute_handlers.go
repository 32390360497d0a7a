package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/agrolease/agrolease/internal/apperr"
	appDispute "github.com/agrolease/agrolease/internal/application/dispute"
	domainDispute "github.com/agrolease/agrolease/internal/domain/dispute"
)

type createDisputeRequest struct {
	LeaseID   *uuid.UUID `json:"lease_id,omitempty"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	Category  string     `json:"category"`
	Reason    string     `json:"reason"`
}

func (s *Server) createDispute(w http.ResponseWriter, r *http.Request) {
	var req createDisputeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.Create(r.Context(), auth.Actor(), appDispute.CreateInput{
		LeaseID:   req.LeaseID,
		PaymentID: req.PaymentID,
		Category:  domainDispute.Category(req.Category),
		Reason:    req.Reason,
	})
	if err != nil {
		// Duplicate open dispute returns the existing record so the client
		// can show it instead of the rejected one.
		if errors.Is(err, apperr.ErrDuplicatePending) && d != nil {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "DUPLICATE_PENDING",
				"message": err.Error(),
				"dispute": d,
			})
			return
		}
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (s *Server) listDisputes(w http.ResponseWriter, r *http.Request) {
	var filter domainDispute.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainDispute.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("subject_id"); v != "" {
		subjectID, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid subject_id")
			return
		}
		filter.SubjectID = &subjectID
	}
	limit, offset := parsePagination(r)
	auth := authUserFromContext(r.Context())
	disputes, err := s.disputeSvc.List(r.Context(), filter, auth.Actor(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"disputes": disputes, "count": len(disputes)})
}

func (s *Server) getDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.GetByID(r.Context(), disputeID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) getDisputeHistory(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	history, err := s.disputeSvc.History(r.Context(), disputeID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": history, "count": len(history)})
}

type updateDisputeStatusRequest struct {
	Status         string  `json:"status"`
	ResolutionNote *string `json:"resolution_note,omitempty"`
}

func (s *Server) updateDisputeStatus(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	var req updateDisputeStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.UpdateStatus(r.Context(), disputeID, auth.Actor(), domainDispute.Status(req.Status), req.ResolutionNote)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}
