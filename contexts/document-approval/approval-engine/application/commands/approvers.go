package commands

import (
	"context"
	"sort"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// resolveApprovers expands a step's selector into a de-duplicated, sorted
// user-id set. Each selector variant has its own typed resolution path.
func resolveApprovers(
	ctx context.Context,
	directory ports.Directory,
	companyID string,
	selector entities.ApproverSelector,
) ([]string, error) {
	if !selector.IsValid() {
		return nil, domainerrors.ErrInvalidInput
	}

	var (
		users []string
		err   error
	)
	switch selector.Kind {
	case entities.SelectByRole:
		users, err = resolveByRole(ctx, directory, companyID, selector.IDs)
	case entities.SelectByUser:
		users, err = resolveByUser(ctx, directory, companyID, selector.IDs)
	case entities.SelectByDepartment:
		users, err = resolveByDepartment(ctx, directory, companyID, selector.IDs)
	}
	if err != nil {
		return nil, err
	}
	return dedupe(users), nil
}

func resolveByRole(ctx context.Context, directory ports.Directory, companyID string, roleIDs []string) ([]string, error) {
	var users []string
	for _, roleID := range roleIDs {
		found, err := directory.UsersWithRole(ctx, companyID, roleID)
		if err != nil {
			return nil, err
		}
		users = append(users, found...)
	}
	return users, nil
}

func resolveByUser(ctx context.Context, directory ports.Directory, companyID string, userIDs []string) ([]string, error) {
	return directory.ActiveMembers(ctx, companyID, userIDs)
}

func resolveByDepartment(ctx context.Context, directory ports.Directory, companyID string, departmentIDs []string) ([]string, error) {
	var users []string
	for _, departmentID := range departmentIDs {
		found, err := directory.UsersInDepartment(ctx, companyID, departmentID)
		if err != nil {
			return nil, err
		}
		users = append(users, found...)
	}
	return users, nil
}

func dedupe(userIDs []string) []string {
	seen := make(map[string]struct{}, len(userIDs))
	items := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}
