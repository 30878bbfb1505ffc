package errors

import "errors"

var (
	ErrInvalidScope     = errors.New("enterprise scope requires a company id")
	ErrInvalidInput     = errors.New("invalid access-control input")
	ErrNotAMember       = errors.New("actor is not an active member of the company")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoleNotFound     = errors.New("role not found")
	ErrForbidden        = errors.New("actor may not manage roles for this company")
	ErrUnknownResource  = errors.New("unknown resource kind")
)
