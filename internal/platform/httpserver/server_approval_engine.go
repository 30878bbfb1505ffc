package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	approvalerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	approvalhttp "weldvault/contexts/document-approval/approval-engine/transport/http"
)

func (s *Server) registerApprovalRoutes() {
	s.mux.HandleFunc("POST /api/approvals/v1/submit", s.handleApprovalSubmit)
	s.mux.HandleFunc("POST /api/approvals/v1/submit-batch", s.handleApprovalBatchSubmit)
	s.mux.HandleFunc("POST /api/approvals/v1/instances/{instance_id}/approve", s.handleApprovalApprove)
	s.mux.HandleFunc("POST /api/approvals/v1/instances/{instance_id}/reject", s.handleApprovalReject)
	s.mux.HandleFunc("POST /api/approvals/v1/instances/{instance_id}/return", s.handleApprovalReturn)
	s.mux.HandleFunc("POST /api/approvals/v1/instances/{instance_id}/cancel", s.handleApprovalCancel)
	s.mux.HandleFunc("POST /api/approvals/v1/approve-batch", s.handleApprovalBatchApprove)
	s.mux.HandleFunc("POST /api/approvals/v1/reject-batch", s.handleApprovalBatchReject)
	s.mux.HandleFunc("GET /api/approvals/v1/pending", s.handleApprovalPending)
	s.mux.HandleFunc("GET /api/approvals/v1/my-submissions", s.handleApprovalMySubmissions)
	s.mux.HandleFunc("GET /api/approvals/v1/instances/{instance_id}", s.handleApprovalDetail)
	s.mux.HandleFunc("GET /api/approvals/v1/documents/{document_type}/{document_id}/active", s.handleApprovalActiveInstance)
	s.mux.HandleFunc("GET /api/approvals/v1/statistics", s.handleApprovalStatistics)
	s.mux.HandleFunc("POST /api/approvals/v1/workflows", s.handleApprovalSaveWorkflow)
	s.mux.HandleFunc("POST /api/approvals/v1/workflows/{workflow_id}/deactivate", s.handleApprovalDeactivateWorkflow)
	s.mux.HandleFunc("GET /api/approvals/v1/workflows", s.handleApprovalListWorkflows)
}

func (s *Server) handleApprovalSubmit(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req approvalhttp.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.approval.Handler.SubmitHandler(r.Context(), actorID, req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApprovalBatchSubmit(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req approvalhttp.BatchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.approval.Handler.BatchSubmitHandler(r.Context(), actorID, req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalApprove(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalDecision(w, r, s.approval.Handler.ApproveHandler)
}

func (s *Server) handleApprovalReject(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalDecision(w, r, s.approval.Handler.RejectHandler)
}

func (s *Server) handleApprovalReturn(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalDecision(w, r, s.approval.Handler.ReturnHandler)
}

func (s *Server) handleApprovalCancel(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalDecision(w, r, s.approval.Handler.CancelHandler)
}

type decisionHandlerFunc func(ctx context.Context, actorID, instanceID string, request approvalhttp.DecisionRequest) (approvalhttp.InstanceDTO, error)

func (s *Server) handleApprovalDecision(w http.ResponseWriter, r *http.Request, op decisionHandlerFunc) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req approvalhttp.DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}
	resp, err := op(r.Context(), actorID, r.PathValue("instance_id"), req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalBatchApprove(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalBatchDecision(w, r, s.approval.Handler.BatchApproveHandler)
}

func (s *Server) handleApprovalBatchReject(w http.ResponseWriter, r *http.Request) {
	s.handleApprovalBatchDecision(w, r, s.approval.Handler.BatchRejectHandler)
}

func (s *Server) handleApprovalBatchDecision(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actorID string, request approvalhttp.BatchDecisionRequest) (approvalhttp.BatchResultDTO, error),
) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req approvalhttp.BatchDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := op(r.Context(), actorID, req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalPending(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	page, ok := parsePage(r)
	if !ok {
		writeApprovalError(w, http.StatusBadRequest, "invalid_page", "page and size must be integers")
		return
	}
	resp, err := s.approval.Handler.PendingHandler(r.Context(), actorID, r.URL.Query().Get("company_id"), page)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalMySubmissions(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	page, ok := parsePage(r)
	if !ok {
		writeApprovalError(w, http.StatusBadRequest, "invalid_page", "page and size must be integers")
		return
	}
	query := r.URL.Query()
	resp, err := s.approval.Handler.MySubmissionsHandler(
		r.Context(),
		actorID,
		query.Get("company_id"),
		query["status"],
		page,
	)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalDetail(w http.ResponseWriter, r *http.Request) {
	resp, err := s.approval.Handler.DetailHandler(r.Context(), r.PathValue("instance_id"))
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalActiveInstance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.approval.Handler.ActiveInstanceHandler(
		r.Context(),
		r.PathValue("document_type"),
		r.PathValue("document_id"),
	)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalStatistics(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.approval.Handler.StatisticsHandler(r.Context(), actorID, r.URL.Query().Get("company_id"))
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req approvalhttp.SaveWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.approval.Handler.SaveWorkflowHandler(r.Context(), actorID, req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalDeactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	err := s.approval.Handler.DeactivateWorkflowHandler(
		r.Context(),
		actorID,
		r.URL.Query().Get("company_id"),
		r.PathValue("workflow_id"),
	)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApprovalListWorkflows(w http.ResponseWriter, r *http.Request) {
	actorID := requestUserID(r)
	if actorID == "" {
		writeApprovalError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	query := r.URL.Query()
	resp, err := s.approval.Handler.ListWorkflowsHandler(
		r.Context(),
		actorID,
		query.Get("company_id"),
		query.Get("document_type"),
	)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeApprovalDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, approvalerrors.ErrInvalidInput),
		errors.Is(err, approvalerrors.ErrInvalidScope):
		writeApprovalError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, approvalerrors.ErrNotApplicable):
		writeApprovalError(w, http.StatusUnprocessableEntity, "not_applicable", err.Error())
	case errors.Is(err, approvalerrors.ErrWorkflowNotFound):
		writeApprovalError(w, http.StatusNotFound, "workflow_not_found", err.Error())
	case errors.Is(err, approvalerrors.ErrInstanceNotFound):
		writeApprovalError(w, http.StatusNotFound, "instance_not_found", err.Error())
	case errors.Is(err, approvalerrors.ErrDuplicateActive):
		writeApprovalError(w, http.StatusConflict, "duplicate_active_instance", err.Error())
	case errors.Is(err, approvalerrors.ErrConflict):
		writeApprovalError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, approvalerrors.ErrInvalidTransition):
		writeApprovalError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, approvalerrors.ErrUnauthorized):
		writeApprovalError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeApprovalError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeApprovalError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, approvalhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
