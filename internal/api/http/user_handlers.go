package httpapi

import (
	"net/http"

	appUser "github.com/agrolease/agrolease/internal/application/user"
	domainUser "github.com/agrolease/agrolease/internal/domain/user"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.CreateUser(r.Context(), appUser.CreateInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domainUser.Role(req.Role),
	}, auth.Actor().String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	var filter domainUser.Filter
	if v := r.URL.Query().Get("role"); v != "" {
		role := domainUser.Role(v)
		filter.Role = &role
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainUser.Status(v)
		filter.Status = &status
	}
	limit, offset := parsePagination(r)
	users, err := s.userSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	auth := authUserFromContext(r.Context())
	if !auth.Actor().IsAdmin() && auth.UserID != userID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "cannot view other users")
		return
	}
	u, err := s.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type setUserStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	var req setUserStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.SetStatus(r.Context(), userID, domainUser.Status(req.Status), auth.Actor().String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
