package httpapi

import (
	"net/http"

	appLand "github.com/agrolease/agrolease/internal/application/land"
	domainLand "github.com/agrolease/agrolease/internal/domain/land"
)

type createLandRequest struct {
	Title     string  `json:"title"`
	Location  string  `json:"location"`
	SizeAcres float64 `json:"size_acres"`
}

func (s *Server) createLand(w http.ResponseWriter, r *http.Request) {
	var req createLandRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	l, err := s.landSvc.Create(r.Context(), auth.UserID, appLand.CreateInput{
		Title:     req.Title,
		Location:  req.Location,
		SizeAcres: req.SizeAcres,
	}, auth.Actor().String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) listLands(w http.ResponseWriter, r *http.Request) {
	var filter domainLand.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainLand.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("owner_id"); v != "" {
		ownerID, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid owner_id")
			return
		}
		filter.OwnerID = &ownerID
	}
	limit, offset := parsePagination(r)
	lands, err := s.landSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"lands": lands, "count": len(lands)})
}

func (s *Server) getLand(w http.ResponseWriter, r *http.Request) {
	landID, err := parseUUIDParam(r, "landId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid land id")
		return
	}
	l, err := s.landSvc.GetByID(r.Context(), landID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}
