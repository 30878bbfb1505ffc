// Package accesscontrol decides who may see or mutate which resources inside
// weldvault's shared document store.
//
// Layering:
// - domain: scope/visibility value types, role catalog, denial reasons
// - application: access decision, bulk query scoping, role administration
// - ports: directory and role storage boundaries
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Document services consume decisions and scope filters; they never read
//   employee or role rows directly.
// - The approval engine reaches this module only through its PermissionChecker
//   port, wired in the composition root.
package accesscontrol
