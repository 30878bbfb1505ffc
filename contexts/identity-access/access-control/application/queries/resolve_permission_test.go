package queries

import (
	"context"
	"testing"

	"weldvault/contexts/identity-access/access-control/adapters/memory"
	"weldvault/contexts/identity-access/access-control/domain/entities"
)

func TestResolvePermissionLadder(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedEmployee(entities.Employee{
		UserID:    "admin-1",
		CompanyID: "company-1",
		IsAdmin:   true,
	})
	store.SeedEmployee(entities.Employee{
		UserID:    "plain-1",
		CompanyID: "company-1",
	})
	store.SeedRole(entities.Role{
		RoleID:    "role-approver",
		CompanyID: "company-1",
		Name:      "Approver",
		Matrix: map[entities.PermissionKey]bool{
			{Module: entities.ModuleWPS, Action: entities.ActionApprove}: true,
			{Module: entities.ModuleWPS, Action: entities.ActionView}:    true,
		},
		IsActive: true,
	})
	store.SeedEmployee(entities.Employee{
		UserID:    "approver-1",
		CompanyID: "company-1",
		RoleID:    "role-approver",
	})
	uc := ResolvePermissionUseCase{Directory: store, Roles: store}

	cases := []struct {
		name   string
		actor  string
		module entities.Module
		action entities.Action
		want   bool
	}{
		{"owner always granted", "owner-1", entities.ModulePQR, entities.ActionDelete, true},
		{"admin flag always granted", "admin-1", entities.ModuleWelder, entities.ActionApprove, true},
		{"no role default grants view", "plain-1", entities.ModuleWPS, entities.ActionView, true},
		{"no role default grants create", "plain-1", entities.ModuleWPS, entities.ActionCreate, true},
		{"no role default denies edit", "plain-1", entities.ModuleWPS, entities.ActionEdit, false},
		{"no role default denies approve", "plain-1", entities.ModuleWPS, entities.ActionApprove, false},
		{"role matrix grants listed bit", "approver-1", entities.ModuleWPS, entities.ActionApprove, true},
		{"role matrix denies missing bit", "approver-1", entities.ModulePQR, entities.ActionApprove, false},
		{"non-member resolves to false", "outsider", entities.ModuleWPS, entities.ActionView, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), ResolvePermissionQuery{
				ActorID:   tc.actor,
				CompanyID: "company-1",
				Module:    tc.module,
				Action:    tc.action,
			})
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestResolvePermissionDanglingRoleFallsBackToDefault(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedEmployee(entities.Employee{
		UserID:    "member-1",
		CompanyID: "company-1",
		RoleID:    "role-deleted",
	})
	uc := ResolvePermissionUseCase{Directory: store, Roles: store}

	got, err := uc.Execute(context.Background(), ResolvePermissionQuery{
		ActorID:   "member-1",
		CompanyID: "company-1",
		Module:    entities.ModuleWPS,
		Action:    entities.ActionView,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !got {
		t.Fatal("expected dangling role to behave like no role for view")
	}

	got, err = uc.Execute(context.Background(), ResolvePermissionQuery{
		ActorID:   "member-1",
		CompanyID: "company-1",
		Module:    entities.ModuleWPS,
		Action:    entities.ActionEdit,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got {
		t.Fatal("expected dangling role to deny edit")
	}
}

func TestResolvePermissionInactiveRoleGrantsNothing(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedRole(entities.Role{
		RoleID:    "role-off",
		CompanyID: "company-1",
		Name:      "Retired",
		Matrix: map[entities.PermissionKey]bool{
			{Module: entities.ModuleWPS, Action: entities.ActionApprove}: true,
		},
		IsActive: false,
	})
	store.SeedEmployee(entities.Employee{
		UserID:    "member-1",
		CompanyID: "company-1",
		RoleID:    "role-off",
	})
	uc := ResolvePermissionUseCase{Directory: store, Roles: store}

	got, err := uc.Execute(context.Background(), ResolvePermissionQuery{
		ActorID:   "member-1",
		CompanyID: "company-1",
		Module:    entities.ModuleWPS,
		Action:    entities.ActionApprove,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got {
		t.Fatal("expected inactive role to deny its own matrix bits")
	}
}
