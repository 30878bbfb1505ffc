package accesscontrol

import (
	"log/slog"

	httpadapter "weldvault/contexts/identity-access/access-control/adapters/http"
	"weldvault/contexts/identity-access/access-control/adapters/memory"
	"weldvault/contexts/identity-access/access-control/application/commands"
	"weldvault/contexts/identity-access/access-control/application/queries"
	"weldvault/contexts/identity-access/access-control/ports"
)

// Module is the access-control composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler

	CheckAccess       queries.CheckAccessUseCase
	ScopeFilter       queries.ScopeFilterUseCase
	ResolvePermission queries.ResolvePermissionUseCase
	RoleAdmin         commands.RoleAdminUseCase

	Store *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Directory   ports.Directory
	Roles       ports.RoleRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the access-control use-cases and transport handler.
func NewModule(deps Dependencies) Module {
	resolvePermission := queries.ResolvePermissionUseCase{
		Directory: deps.Directory,
		Roles:     deps.Roles,
		Logger:    deps.Logger,
	}
	checkAccess := queries.CheckAccessUseCase{
		Directory:         deps.Directory,
		Roles:             deps.Roles,
		ResolvePermission: resolvePermission,
		Clock:             deps.Clock,
		Logger:            deps.Logger,
	}
	scopeFilter := queries.ScopeFilterUseCase{
		Directory: deps.Directory,
		Roles:     deps.Roles,
		Logger:    deps.Logger,
	}
	roleAdmin := commands.RoleAdminUseCase{
		Directory: deps.Directory,
		Roles:     deps.Roles,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}

	handler := httpadapter.Handler{
		CheckAccess: checkAccess,
		ScopeFilter: scopeFilter,
		RoleAdmin:   roleAdmin,
		Logger:      deps.Logger,
	}

	return Module{
		Handler:           handler,
		CheckAccess:       checkAccess,
		ScopeFilter:       scopeFilter,
		ResolvePermission: resolvePermission,
		RoleAdmin:         roleAdmin,
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// adapter backing every port.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Directory:   store,
		Roles:       store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
