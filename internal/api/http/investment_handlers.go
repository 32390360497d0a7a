package httpapi

import (
	"net/http"

	domainInvestment "github.com/agrolease/agrolease/internal/domain/investment"
)

type createInvestmentRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) createInvestment(w http.ResponseWriter, r *http.Request) {
	leaseID, err := parseUUIDParam(r, "leaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid lease id")
		return
	}
	var req createInvestmentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	inv, err := s.investmentSvc.Create(r.Context(), leaseID, auth.Actor(), req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (s *Server) listInvestments(w http.ResponseWriter, r *http.Request) {
	var filter domainInvestment.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainInvestment.Status(v)
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
	investments, err := s.investmentSvc.List(r.Context(), filter, auth.Actor(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"investments": investments, "count": len(investments)})
}

func (s *Server) getInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID, err := parseUUIDParam(r, "investmentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid investment id")
		return
	}
	auth := authUserFromContext(r.Context())
	inv, err := s.investmentSvc.GetByID(r.Context(), investmentID, auth.Actor())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}
