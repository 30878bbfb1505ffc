package approvalengine

import (
	"log/slog"
	"time"

	httpadapter "weldvault/contexts/document-approval/approval-engine/adapters/http"
	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	"weldvault/contexts/document-approval/approval-engine/application/commands"
	"weldvault/contexts/document-approval/approval-engine/application/queries"
	"weldvault/contexts/document-approval/approval-engine/application/workers"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// Module is the approval-engine composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler

	Submit        commands.SubmitUseCase
	Transition    commands.TransitionUseCase
	Batch         commands.BatchUseCase
	WorkflowAdmin commands.WorkflowAdminUseCase

	WorkflowLookup queries.WorkflowLookupUseCase
	Pending        queries.PendingApprovalsUseCase
	Submissions    queries.MySubmissionsUseCase
	Detail         queries.InstanceDetailUseCase
	ActiveLookup   queries.ActiveInstanceUseCase
	Statistics     queries.StatisticsUseCase

	Relay workers.NotificationRelay

	Store *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Workflows   ports.WorkflowRepository
	Instances   ports.InstanceRepository
	History     ports.HistoryRepository
	Outbox      ports.OutboxRepository
	Directory   ports.Directory
	Permissions ports.PermissionChecker
	Publisher   ports.NotificationPublisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator

	OverdueThreshold time.Duration
	RelayBatchSize   int

	Logger *slog.Logger
}

// NewModule wires the approval-engine use-cases, worker and transport handler.
func NewModule(deps Dependencies) Module {
	lookup := queries.WorkflowLookupUseCase{
		Workflows: deps.Workflows,
		Logger:    deps.Logger,
	}
	submit := commands.SubmitUseCase{
		Lookup:    lookup,
		Workflows: deps.Workflows,
		Instances: deps.Instances,
		Directory: deps.Directory,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	transition := commands.TransitionUseCase{
		Instances:   deps.Instances,
		Workflows:   deps.Workflows,
		Directory:   deps.Directory,
		Permissions: deps.Permissions,
		Clock:       deps.Clock,
		IDGen:       deps.IDGenerator,
		Logger:      deps.Logger,
	}
	batch := commands.BatchUseCase{
		Submit:     submit,
		Transition: transition,
		Logger:     deps.Logger,
	}
	workflowAdmin := commands.WorkflowAdminUseCase{
		Workflows:   deps.Workflows,
		Permissions: deps.Permissions,
		Clock:       deps.Clock,
		IDGen:       deps.IDGenerator,
		Logger:      deps.Logger,
	}

	pending := queries.PendingApprovalsUseCase{
		Instances: deps.Instances,
		Directory: deps.Directory,
		Logger:    deps.Logger,
	}
	submissions := queries.MySubmissionsUseCase{
		Instances: deps.Instances,
		Logger:    deps.Logger,
	}
	detail := queries.InstanceDetailUseCase{
		Instances: deps.Instances,
		History:   deps.History,
		Logger:    deps.Logger,
	}
	activeLookup := queries.ActiveInstanceUseCase{
		Instances: deps.Instances,
		Logger:    deps.Logger,
	}
	statistics := queries.StatisticsUseCase{
		Instances:        deps.Instances,
		Clock:            deps.Clock,
		OverdueThreshold: deps.OverdueThreshold,
		Logger:           deps.Logger,
	}

	relay := workers.NotificationRelay{
		Outbox:    deps.Outbox,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		BatchSize: deps.RelayBatchSize,
		Logger:    deps.Logger,
	}

	handler := httpadapter.Handler{
		Submit:        submit,
		Transition:    transition,
		Batch:         batch,
		WorkflowAdmin: workflowAdmin,
		Pending:       pending,
		Submissions:   submissions,
		Detail:        detail,
		ActiveLookup:  activeLookup,
		Statistics:    statistics,
		Logger:        deps.Logger,
	}

	return Module{
		Handler:        handler,
		Submit:         submit,
		Transition:     transition,
		Batch:          batch,
		WorkflowAdmin:  workflowAdmin,
		WorkflowLookup: lookup,
		Pending:        pending,
		Submissions:    submissions,
		Detail:         detail,
		ActiveLookup:   activeLookup,
		Statistics:     statistics,
		Relay:          relay,
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// adapter backing every port.
func NewInMemoryModule(publisher ports.NotificationPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Workflows:   store,
		Instances:   store,
		History:     store,
		Outbox:      store,
		Directory:   store,
		Permissions: store,
		Publisher:   publisher,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
