package bootstrap

import (
	"context"

	approvalports "weldvault/contexts/document-approval/approval-engine/ports"
	accessqueries "weldvault/contexts/identity-access/access-control/application/queries"
	accessentities "weldvault/contexts/identity-access/access-control/domain/entities"
	accessports "weldvault/contexts/identity-access/access-control/ports"
)

// approvalPermissions bridges the approval engine's PermissionChecker port
// onto the access-control module. It is the only path between the two
// contexts.
type approvalPermissions struct {
	resolve   accessqueries.ResolvePermissionUseCase
	directory accessports.Directory
}

func (p approvalPermissions) CanApprove(ctx context.Context, actorID, companyID, documentType string) (bool, error) {
	module, ok := accessentities.ModuleForDocumentType(documentType)
	if !ok {
		return false, nil
	}
	return p.resolve.Execute(ctx, accessqueries.ResolvePermissionQuery{
		ActorID:   actorID,
		CompanyID: companyID,
		Module:    module,
		Action:    accessentities.ActionApprove,
	})
}

func (p approvalPermissions) IsCompanyAdmin(ctx context.Context, actorID, companyID string) (bool, error) {
	owner, err := p.directory.IsCompanyOwner(ctx, actorID, companyID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	employee, found, err := p.directory.GetActiveEmployee(ctx, actorID, companyID)
	if err != nil {
		return false, err
	}
	return found && employee.IsAdmin, nil
}

func (p approvalPermissions) IsSystemAdmin(ctx context.Context, actorID string) (bool, error) {
	return p.directory.IsSystemAdmin(ctx, actorID)
}

var _ approvalports.PermissionChecker = approvalPermissions{}
