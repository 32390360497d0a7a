package httpapi

import (
	"net/http"

	appLease "github.com/agrolease/agrolease/internal/application/lease"
	domainLease "github.com/agrolease/agrolease/internal/domain/lease"
)

type leaseRequestBody struct {
	DurationMonths int   `json:"duration_months"`
	PricePerMonth  int64 `json:"price_per_month"`
}

func (s *Server) requestLease(w http.ResponseWriter, r *http.Request) {
	landID, err := parseUUIDParam(r, "landId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid land id")
		return
	}
	var req leaseRequestBody
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	ls, err := s.leaseSvc.Request(r.Context(), landID, auth.Actor(), appLease.RequestInput{
		DurationMonths: req.DurationMonths,
		PricePerMonth:  req.PricePerMonth,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ls)
}

func (s *Server) approveLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	auth := authUserFromContext(r.Context())
	ls, err := s.leaseSvc.Approve(r.Context(), leaseID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ls)
}

type rejectLeaseRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) rejectLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	var req rejectLeaseRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}
	auth := authUserFromContext(r.Context())
	ls, err := s.leaseSvc.Reject(r.Context(), leaseID, auth.Actor(), req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ls)
}

func (s *Server) deleteLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	auth := authUserFromContext(r.Context())
	if err := s.leaseSvc.Delete(r.Context(), leaseID, auth.Actor()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) getLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	auth := authUserFromContext(r.Context())
	ls, err := s.leaseSvc.GetByID(r.Context(), leaseID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ls)
}

func (s *Server) listLeases(w http.ResponseWriter, r *http.Request) {
	var filter domainLease.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainLease.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("land_id"); v != "" {
		landID, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid land_id")
			return
		}
		filter.LandID = &landID
	}
	limit, offset := parsePagination(r)
	auth := authUserFromContext(r.Context())
	leases, err := s.leaseSvc.List(r.Context(), filter, auth.Actor(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"leases": leases, "count": len(leases)})
}
