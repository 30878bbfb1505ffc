package entities

import "time"

// DenyReason distinguishes the structurally different causes of a denial.
// The same action can be denied for reasons that need different user
// remedies, so a flat "forbidden" is never returned.
type DenyReason string

const (
	DenyNone              DenyReason = ""
	DenyNotAMember        DenyReason = "not_a_member"
	DenyWrongScope        DenyReason = "wrong_scope"
	DenyPrivateResource   DenyReason = "private_resource"
	DenyMissingPermission DenyReason = "missing_permission"
)

// Decision is the outcome of one access check.
type Decision struct {
	ActorID   string
	Allowed   bool
	Reason    DenyReason
	Detail    string
	CheckedAt time.Time
}

func Allow(actorID string, at time.Time) Decision {
	return Decision{ActorID: actorID, Allowed: true, CheckedAt: at}
}

func Deny(actorID string, reason DenyReason, detail string, at time.Time) Decision {
	return Decision{ActorID: actorID, Reason: reason, Detail: detail, CheckedAt: at}
}
