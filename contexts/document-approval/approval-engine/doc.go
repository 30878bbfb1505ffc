// Package approvalengine runs multi-step approval workflows over welding
// documents: WPS, PQR, welder certificates, materials and equipment records.
//
// Layering:
// - domain: instance state machine, workflow templates, audit history
// - application: submit/decide/batch commands, worklist and statistics
//   queries, the outbox relay worker
// - ports: directory, permission, workflow, instance, outbox boundaries
// - adapters: concrete HTTP, memory, postgres and event-bus implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - One active instance per document is a storage invariant, enforced by the
//   partial unique index over active statuses and surfaced as
//   ErrDuplicateActive.
// - Concurrent decisions race on the instance version; losers get
//   ErrConflict and must re-read.
// - Permission questions go through the PermissionChecker port; the engine
//   never reads role rows directly.
package approvalengine
