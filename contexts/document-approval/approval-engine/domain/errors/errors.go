package errors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid approval input")
	ErrInvalidScope      = errors.New("enterprise workspace requires a company id")
	ErrNotApplicable     = errors.New("approval does not apply to personal workspaces")
	ErrWorkflowNotFound  = errors.New("workflow definition not found")
	ErrDuplicateActive   = errors.New("document already has an active approval instance")
	ErrInstanceNotFound  = errors.New("approval instance not found")
	ErrInvalidTransition = errors.New("action not allowed in the instance's current status")
	ErrUnauthorized      = errors.New("actor may not act on this approval")
	ErrConflict          = errors.New("approval instance was modified concurrently")
)
