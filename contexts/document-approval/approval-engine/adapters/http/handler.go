package httpadapter

import (
	"context"
	"log/slog"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/application/commands"
	"weldvault/contexts/document-approval/approval-engine/application/queries"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	"weldvault/contexts/document-approval/approval-engine/ports"
	httptransport "weldvault/contexts/document-approval/approval-engine/transport/http"
)

// Handler maps HTTP DTOs to approval commands/queries.
type Handler struct {
	Submit        commands.SubmitUseCase
	Transition    commands.TransitionUseCase
	Batch         commands.BatchUseCase
	WorkflowAdmin commands.WorkflowAdminUseCase
	Pending       queries.PendingApprovalsUseCase
	Submissions   queries.MySubmissionsUseCase
	Detail        queries.InstanceDetailUseCase
	ActiveLookup  queries.ActiveInstanceUseCase
	Statistics    queries.StatisticsUseCase
	Logger        *slog.Logger
}

func (h Handler) SubmitHandler(
	ctx context.Context,
	actorID string,
	request httptransport.SubmitRequest,
) (httptransport.InstanceDTO, error) {
	logger := application.ResolveLogger(h.Logger)

	instance, err := h.Submit.Execute(ctx, commands.SubmitCommand{
		DocumentType:   request.DocumentType,
		DocumentID:     request.DocumentID,
		DocumentNumber: request.DocumentNumber,
		DocumentTitle:  request.DocumentTitle,
		ActorID:        actorID,
		ActorName:      request.ActorName,
		Workspace:      workspaceFromDTO(request.Scope),
		Notes:          request.Notes,
		Priority:       request.Priority,
		WorkflowID:     request.WorkflowID,
	})
	if err != nil {
		logger.Error("http submit failed",
			"event", "approval_http_submit_failed",
			"module", "document-approval/approval-engine",
			"layer", "transport",
			"actor_id", actorID,
			"document_type", request.DocumentType,
			"document_id", request.DocumentID,
			"error", err.Error(),
		)
		return httptransport.InstanceDTO{}, err
	}
	return instanceDTO(instance), nil
}

func (h Handler) BatchSubmitHandler(
	ctx context.Context,
	actorID string,
	request httptransport.BatchSubmitRequest,
) (httptransport.BatchResultDTO, error) {
	documents := make([]commands.BatchDocument, 0, len(request.Documents))
	for _, doc := range request.Documents {
		documents = append(documents, commands.BatchDocument{
			DocumentID:     doc.DocumentID,
			DocumentNumber: doc.DocumentNumber,
			DocumentTitle:  doc.DocumentTitle,
		})
	}
	result, err := h.Batch.BatchSubmit(ctx, commands.BatchSubmitCommand{
		DocumentType: request.DocumentType,
		Documents:    documents,
		ActorID:      actorID,
		ActorName:    request.ActorName,
		Workspace:    workspaceFromDTO(request.Scope),
		WorkflowID:   request.WorkflowID,
		Priority:     request.Priority,
		Notes:        request.Notes,
	})
	if err != nil {
		return httptransport.BatchResultDTO{}, err
	}
	return batchResultDTO(result), nil
}

func (h Handler) ApproveHandler(ctx context.Context, actorID, instanceID string, request httptransport.DecisionRequest) (httptransport.InstanceDTO, error) {
	return h.decide(ctx, h.Transition.Approve, actorID, instanceID, request)
}

func (h Handler) RejectHandler(ctx context.Context, actorID, instanceID string, request httptransport.DecisionRequest) (httptransport.InstanceDTO, error) {
	return h.decide(ctx, h.Transition.Reject, actorID, instanceID, request)
}

func (h Handler) ReturnHandler(ctx context.Context, actorID, instanceID string, request httptransport.DecisionRequest) (httptransport.InstanceDTO, error) {
	return h.decide(ctx, h.Transition.Return, actorID, instanceID, request)
}

func (h Handler) CancelHandler(ctx context.Context, actorID, instanceID string, request httptransport.DecisionRequest) (httptransport.InstanceDTO, error) {
	return h.decide(ctx, h.Transition.Cancel, actorID, instanceID, request)
}

func (h Handler) decide(
	ctx context.Context,
	op func(context.Context, commands.DecisionCommand) (entities.ApprovalInstance, error),
	actorID, instanceID string,
	request httptransport.DecisionRequest,
) (httptransport.InstanceDTO, error) {
	instance, err := op(ctx, commands.DecisionCommand{
		InstanceID:  instanceID,
		ActorID:     actorID,
		ActorName:   request.ActorName,
		Comment:     request.Comment,
		Attachments: request.Attachments,
	})
	if err != nil {
		return httptransport.InstanceDTO{}, err
	}
	return instanceDTO(instance), nil
}

func (h Handler) BatchApproveHandler(ctx context.Context, actorID string, request httptransport.BatchDecisionRequest) (httptransport.BatchResultDTO, error) {
	result, err := h.Batch.BatchApprove(ctx, request.InstanceIDs, actorID, request.ActorName, request.Comment)
	if err != nil {
		return httptransport.BatchResultDTO{}, err
	}
	return batchResultDTO(result), nil
}

func (h Handler) BatchRejectHandler(ctx context.Context, actorID string, request httptransport.BatchDecisionRequest) (httptransport.BatchResultDTO, error) {
	result, err := h.Batch.BatchReject(ctx, request.InstanceIDs, actorID, request.ActorName, request.Comment)
	if err != nil {
		return httptransport.BatchResultDTO{}, err
	}
	return batchResultDTO(result), nil
}

func (h Handler) PendingHandler(ctx context.Context, actorID, companyID string, page ports.Page) (httptransport.InstanceListResponse, error) {
	result, err := h.Pending.Execute(ctx, actorID, companyID, page)
	if err != nil {
		return httptransport.InstanceListResponse{}, err
	}
	return instanceListResponse(result, page), nil
}

func (h Handler) MySubmissionsHandler(ctx context.Context, actorID, companyID string, statuses []string, page ports.Page) (httptransport.InstanceListResponse, error) {
	typed := make([]entities.Status, 0, len(statuses))
	for _, status := range statuses {
		typed = append(typed, entities.Status(status))
	}
	result, err := h.Submissions.Execute(ctx, actorID, companyID, typed, page)
	if err != nil {
		return httptransport.InstanceListResponse{}, err
	}
	return instanceListResponse(result, page), nil
}

func (h Handler) DetailHandler(ctx context.Context, instanceID string) (httptransport.InstanceDetailResponse, error) {
	detail, err := h.Detail.Execute(ctx, instanceID)
	if err != nil {
		return httptransport.InstanceDetailResponse{}, err
	}
	history := make([]httptransport.HistoryEntryDTO, 0, len(detail.History))
	for _, entry := range detail.History {
		history = append(history, httptransport.HistoryEntryDTO{
			EntryID:      entry.EntryID,
			StepNumber:   entry.StepNumber,
			StepName:     entry.StepName,
			Action:       string(entry.Action),
			OperatorID:   entry.OperatorID,
			OperatorName: entry.OperatorName,
			Comment:      entry.Comment,
			Attachments:  entry.Attachments,
			Result:       entry.Result,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return httptransport.InstanceDetailResponse{
		Instance: instanceDTO(detail.Instance),
		History:  history,
	}, nil
}

func (h Handler) ActiveInstanceHandler(ctx context.Context, documentType, documentID string) (httptransport.ActiveInstanceResponse, error) {
	instance, found, err := h.ActiveLookup.Execute(ctx, documentType, documentID)
	if err != nil {
		return httptransport.ActiveInstanceResponse{}, err
	}
	if !found {
		return httptransport.ActiveInstanceResponse{Active: false}, nil
	}
	dto := instanceDTO(instance)
	return httptransport.ActiveInstanceResponse{Active: true, Instance: &dto}, nil
}

func (h Handler) StatisticsHandler(ctx context.Context, actorID, companyID string) (httptransport.StatisticsResponse, error) {
	stats, err := h.Statistics.Execute(ctx, actorID, companyID)
	if err != nil {
		return httptransport.StatisticsResponse{}, err
	}
	return httptransport.StatisticsResponse{
		PendingCount:    stats.PendingCount,
		InProgressCount: stats.InProgressCount,
		ApprovedCount:   stats.ApprovedCount,
		RejectedCount:   stats.RejectedCount,
		MySubmitted:     stats.MySubmitted,
		OverdueCount:    stats.OverdueCount,
	}, nil
}

func (h Handler) SaveWorkflowHandler(
	ctx context.Context,
	actorID string,
	request httptransport.SaveWorkflowRequest,
) (httptransport.WorkflowDTO, error) {
	steps := make([]entities.WorkflowStep, 0, len(request.Steps))
	for _, step := range request.Steps {
		steps = append(steps, entities.WorkflowStep{
			Name: step.Name,
			Selector: entities.ApproverSelector{
				Kind: entities.SelectorKind(step.SelectorKind),
				IDs:  step.SelectorIDs,
			},
		})
	}
	definition, err := h.WorkflowAdmin.SaveWorkflow(ctx, commands.SaveWorkflowCommand{
		ActorID:      actorID,
		CompanyID:    request.CompanyID,
		WorkflowID:   request.WorkflowID,
		DocumentType: request.DocumentType,
		Name:         request.Name,
		Steps:        steps,
		IsDefault:    request.IsDefault,
	})
	if err != nil {
		return httptransport.WorkflowDTO{}, err
	}
	return workflowDTO(definition), nil
}

func (h Handler) DeactivateWorkflowHandler(ctx context.Context, actorID, companyID, workflowID string) error {
	return h.WorkflowAdmin.DeactivateWorkflow(ctx, actorID, companyID, workflowID)
}

func (h Handler) ListWorkflowsHandler(ctx context.Context, actorID, companyID, documentType string) (httptransport.ListWorkflowsResponse, error) {
	definitions, err := h.WorkflowAdmin.ListWorkflows(ctx, actorID, companyID, documentType)
	if err != nil {
		return httptransport.ListWorkflowsResponse{}, err
	}
	items := make([]httptransport.WorkflowDTO, 0, len(definitions))
	for _, definition := range definitions {
		items = append(items, workflowDTO(definition))
	}
	return httptransport.ListWorkflowsResponse{CompanyID: companyID, Workflows: items}, nil
}

func workspaceFromDTO(dto httptransport.ScopeDTO) entities.Workspace {
	return entities.Workspace{
		Kind:      entities.WorkspaceKind(dto.Kind),
		CompanyID: dto.CompanyID,
		FactoryID: dto.FactoryID,
	}
}

func instanceDTO(instance entities.ApprovalInstance) httptransport.InstanceDTO {
	return httptransport.InstanceDTO{
		InstanceID:     instance.InstanceID,
		WorkflowID:     instance.WorkflowID,
		DocumentType:   instance.DocumentType,
		DocumentID:     instance.DocumentID,
		DocumentNumber: instance.DocumentNumber,
		DocumentTitle:  instance.DocumentTitle,
		Scope: httptransport.ScopeDTO{
			Kind:      string(instance.Workspace.Kind),
			CompanyID: instance.Workspace.CompanyID,
			FactoryID: instance.Workspace.FactoryID,
		},
		Status:          string(instance.Status),
		CurrentStep:     instance.CurrentStep,
		CurrentStepName: instance.CurrentStepName,
		TotalSteps:      instance.TotalSteps,
		SubmitterID:     instance.SubmitterID,
		SubmitterName:   instance.SubmitterName,
		SubmittedAt:     instance.SubmittedAt,
		CompletedAt:     instance.CompletedAt,
		FinalApproverID: instance.FinalApproverID,
		Priority:        instance.Priority,
		Notes:           instance.Notes,
		Version:         instance.Version,
	}
}

func instanceListResponse(result queries.InstancePage, page ports.Page) httptransport.InstanceListResponse {
	page = page.Normalize()
	items := make([]httptransport.InstanceDTO, 0, len(result.Instances))
	for _, instance := range result.Instances {
		items = append(items, instanceDTO(instance))
	}
	return httptransport.InstanceListResponse{
		Items: items,
		Total: result.Total,
		Page:  page.Number,
		Size:  page.Size,
	}
}

func batchResultDTO(result commands.BatchResult) httptransport.BatchResultDTO {
	items := make([]httptransport.BatchItemDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, httptransport.BatchItemDTO{
			ID:      item.ID,
			OK:      item.OK,
			Message: item.Message,
		})
	}
	return httptransport.BatchResultDTO{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Items:     items,
	}
}

func workflowDTO(definition entities.WorkflowDefinition) httptransport.WorkflowDTO {
	steps := make([]httptransport.WorkflowStepDTO, 0, len(definition.Steps))
	for _, step := range definition.Steps {
		steps = append(steps, httptransport.WorkflowStepDTO{
			Name:         step.Name,
			SelectorKind: string(step.Selector.Kind),
			SelectorIDs:  step.Selector.IDs,
		})
	}
	return httptransport.WorkflowDTO{
		WorkflowID:   definition.WorkflowID,
		DocumentType: definition.DocumentType,
		CompanyID:    definition.CompanyID,
		Name:         definition.Name,
		Steps:        steps,
		IsDefault:    definition.IsDefault,
		IsActive:     definition.IsActive,
		CreatedAt:    definition.CreatedAt,
		UpdatedAt:    definition.UpdatedAt,
	}
}
