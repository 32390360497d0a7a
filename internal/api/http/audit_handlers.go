package httpapi

import (
	"net/http"

	"github.com/agrolease/agrolease/internal/domain/audit"
)

func (s *Server) queryAudit(w http.ResponseWriter, r *http.Request) {
	var filter audit.QueryFilter
	if v := r.URL.Query().Get("entity_type"); v != "" {
		et := audit.EntityType(v)
		filter.EntityType = &et
	}
	if v := r.URL.Query().Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := r.URL.Query().Get("action"); v != "" {
		a := audit.Action(v)
		filter.Action = &a
	}
	if v := r.URL.Query().Get("actor"); v != "" {
		filter.Actor = &v
	}
	limit, offset := parsePagination(r)
	logs, err := s.auditSvc.Query(r.Context(), filter, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "count": len(logs)})
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := parseUUIDParam(r, "auditId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid audit id")
		return
	}
	l, err := s.auditSvc.GetByID(r.Context(), auditID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if l == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "audit log not found")
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) verifyAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := parseUUIDParam(r, "auditId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid audit id")
		return
	}
	result, err := s.auditSvc.VerifyIntegrity(r.Context(), auditID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
