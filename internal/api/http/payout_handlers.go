package httpapi

import (
	"net/http"

	appPayout "github.com/agrolease/agrolease/internal/application/payout"
	domainPayout "github.com/agrolease/agrolease/internal/domain/payout"
)

type createPayoutRequest struct {
	PayoutMethodID string `json:"payout_method_id"`
	Amount         *int64 `json:"amount,omitempty"`
}

func (s *Server) requestLeaseRentPayout(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	var req createPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.payoutSvc.RequestLeaseRent(r.Context(), leaseID, auth.Actor(), appPayout.CreateInput{
		PayoutMethodID: req.PayoutMethodID,
		Amount:         req.Amount,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pr)
}

func (s *Server) requestInvestmentReturnPayout(w http.ResponseWriter, r *http.Request) {
	investmentID, err := parseUUIDParam(r, "investmentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid investment id")
		return
	}
	var req createPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.payoutSvc.RequestInvestmentReturn(r.Context(), investmentID, auth.Actor(), appPayout.CreateInput{
		PayoutMethodID: req.PayoutMethodID,
		Amount:         req.Amount,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pr)
}

func (s *Server) listPayoutRequests(w http.ResponseWriter, r *http.Request) {
	var filter domainPayout.Filter
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := domainPayout.Kind(v)
		filter.Kind = &kind
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainPayout.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("source_id"); v != "" {
		sourceID, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid source_id")
			return
		}
		filter.SourceID = &sourceID
	}
	limit, offset := parsePagination(r)
	auth := authUserFromContext(r.Context())
	requests, err := s.payoutSvc.List(r.Context(), filter, auth.Actor(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"payout_requests": requests, "count": len(requests)})
}

func (s *Server) getPayoutRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.payoutSvc.GetByID(r.Context(), requestID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pr)
}

func (s *Server) getPayoutRequestHistory(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	auth := authUserFromContext(r.Context())
	history, err := s.payoutSvc.History(r.Context(), requestID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": history, "count": len(history)})
}

func (s *Server) cancelPayoutRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.payoutSvc.Cancel(r.Context(), requestID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pr)
}

type reviewPayoutRequestBody struct {
	Status         string  `json:"status"`
	AdminNote      *string `json:"admin_note,omitempty"`
	TransactionRef *string `json:"transaction_ref,omitempty"`
	PaidAmount     *int64  `json:"paid_amount,omitempty"`
	ReceiptURL     *string `json:"receipt_url,omitempty"`
}

func (s *Server) reviewPayoutRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	var req reviewPayoutRequestBody
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.payoutSvc.Review(r.Context(), requestID, auth.Actor(), appPayout.ReviewInput{
		Status:         domainPayout.Status(req.Status),
		Note:           req.AdminNote,
		TransactionRef: req.TransactionRef,
		PaidAmount:     req.PaidAmount,
		ReceiptURL:     req.ReceiptURL,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pr)
}
