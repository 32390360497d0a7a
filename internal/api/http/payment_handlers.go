package httpapi

import (
	"net/http"

	appPayment "github.com/agrolease/agrolease/internal/application/payment"
	domainPayment "github.com/agrolease/agrolease/internal/domain/payment"
)

type fundEscrowRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

func (s *Server) fundEscrow(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	var req fundEscrowRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}
	auth := authUserFromContext(r.Context())
	p, err := s.paymentSvc.Fund(r.Context(), leaseID, auth.Actor(), appPayment.FundInput{Amount: req.Amount})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) requestRelease(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parseUUIDParam(r, "paymentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid payment id")
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.paymentSvc.RequestRelease(r.Context(), paymentID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type settlePaymentRequest struct {
	Note *string `json:"note,omitempty"`
}

func (s *Server) releasePayment(w http.ResponseWriter, r *http.Request) {
	s.settlePayment(w, r, true)
}

func (s *Server) refundPayment(w http.ResponseWriter, r *http.Request) {
	s.settlePayment(w, r, false)
}

func (s *Server) settlePayment(w http.ResponseWriter, r *http.Request, release bool) {
	paymentID, err := parseUUIDParam(r, "paymentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid payment id")
		return
	}
	var req settlePaymentRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}
	auth := authUserFromContext(r.Context())
	var p *domainPayment.Payment
	if release {
		p, err = s.paymentSvc.Release(r.Context(), paymentID, auth.Actor(), req.Note)
	} else {
		p, err = s.paymentSvc.Refund(r.Context(), paymentID, auth.Actor(), req.Note)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parseUUIDParam(r, "paymentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid payment id")
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.paymentSvc.GetByID(r.Context(), paymentID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getPaymentHistory(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parseUUIDParam(r, "paymentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid payment id")
		return
	}
	auth := authUserFromContext(r.Context())
	history, err := s.paymentSvc.History(r.Context(), paymentID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": history, "count": len(history)})
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	var filter domainPayment.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainPayment.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("lease_id"); v != "" {
		leaseID, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease_id")
			return
		}
		filter.LeaseID = &leaseID
	}
	limit, offset := parsePagination(r)
	auth := authUserFromContext(r.Context())
	payments, err := s.paymentSvc.List(r.Context(), filter, auth.Actor(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"payments": payments, "count": len(payments)})
}
