package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accesserrors "weldvault/contexts/identity-access/access-control/domain/errors"
	accesshttp "weldvault/contexts/identity-access/access-control/transport/http"
)

func (s *Server) registerAccessControlRoutes() {
	s.mux.HandleFunc("POST /api/access/v1/check", s.handleAccessCheck)
	s.mux.HandleFunc("POST /api/access/v1/scope-filter", s.handleScopeFilter)
	s.mux.HandleFunc("POST /api/access/v1/roles", s.handleSaveRole)
	s.mux.HandleFunc("POST /api/access/v1/roles/{role_id}/deactivate", s.handleDeactivateRole)
	s.mux.HandleFunc("GET /api/access/v1/companies/{company_id}/roles", s.handleListRoles)
}

func (s *Server) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req accesshttp.CheckAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.CheckAccessHandler(r.Context(), actorID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScopeFilter(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req accesshttp.ScopeFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.ScopeFilterHandler(r.Context(), actorID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveRole(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req accesshttp.SaveRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.SaveRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateRole(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := s.access.Handler.DeactivateRoleHandler(r.Context(), actorID, r.PathValue("role_id")); err != nil {
		writeAccessDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.access.Handler.ListRolesHandler(r.Context(), actorID, r.PathValue("company_id"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrInvalidInput),
		errors.Is(err, accesserrors.ErrInvalidScope):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accesserrors.ErrUnknownResource):
		writeAccessError(w, http.StatusBadRequest, "unknown_resource", err.Error())
	case errors.Is(err, accesserrors.ErrRoleNotFound):
		writeAccessError(w, http.StatusNotFound, "role_not_found", err.Error())
	case errors.Is(err, accesserrors.ErrNotAMember):
		writeAccessError(w, http.StatusForbidden, "not_a_member", err.Error())
	case errors.Is(err, accesserrors.ErrPermissionDenied),
		errors.Is(err, accesserrors.ErrForbidden):
		writeAccessError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
