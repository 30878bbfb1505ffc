package commands

import (
	"context"
	"errors"
	"testing"

	"weldvault/contexts/identity-access/access-control/adapters/memory"
	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"
)

func newRoleAdmin(store *memory.Store) RoleAdminUseCase {
	return RoleAdminUseCase{
		Directory: store,
		Roles:     store,
		Clock:     store,
		IDGen:     store,
	}
}

func TestSaveRoleCreatesWithGeneratedID(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	uc := newRoleAdmin(store)

	role, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		Name:      "  Welding Engineer ",
		Matrix: map[entities.PermissionKey]bool{
			{Module: entities.ModuleWPS, Action: entities.ActionEdit}: true,
		},
	})
	if err != nil {
		t.Fatalf("save role: %v", err)
	}
	if role.RoleID == "" {
		t.Fatal("expected a generated role id")
	}
	if role.Name != "Welding Engineer" {
		t.Fatalf("expected trimmed name, got %q", role.Name)
	}
	if role.DataScope != entities.DataScopeFactory {
		t.Fatalf("expected factory default data scope, got %s", role.DataScope)
	}
	if !role.IsActive {
		t.Fatal("expected saved role active")
	}

	stored, err := store.GetRole(context.Background(), role.RoleID)
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if !stored.Grants(entities.ModuleWPS, entities.ActionEdit) {
		t.Fatal("expected stored matrix to grant wps edit")
	}
}

func TestSaveRoleUpdatePreservesCreatedAtAndCompany(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedCompany("company-2", "owner-2")
	uc := newRoleAdmin(store)

	created, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		Name:      "Inspector",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		RoleID:    created.RoleID,
		Name:      "Senior Inspector",
		DataScope: entities.DataScopeCompany,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected CreatedAt preserved, got %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
	if updated.DataScope != entities.DataScopeCompany {
		t.Fatalf("expected company data scope, got %s", updated.DataScope)
	}

	// A role id belonging to another company is not reachable through this
	// company's admin surface.
	_, err = uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-2",
		CompanyID: "company-2",
		RoleID:    created.RoleID,
		Name:      "Hijacked",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for cross-company update, got %v", err)
	}
}

func TestSaveRoleRequiresAdmin(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedEmployee(entities.Employee{
		UserID:    "member-1",
		CompanyID: "company-1",
	})
	store.SeedEmployee(entities.Employee{
		UserID:    "admin-1",
		CompanyID: "company-1",
		IsAdmin:   true,
	})
	uc := newRoleAdmin(store)

	_, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "member-1",
		CompanyID: "company-1",
		Name:      "Sneaky",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain member, got %v", err)
	}

	if _, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "admin-1",
		CompanyID: "company-1",
		Name:      "Allowed",
	}); err != nil {
		t.Fatalf("expected admin employee allowed, got %v", err)
	}
}

func TestSaveRoleRejectsUnknownMatrixKeys(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	uc := newRoleAdmin(store)

	_, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		Name:      "Broken",
		Matrix: map[entities.PermissionKey]bool{
			{Module: "payroll", Action: entities.ActionView}: true,
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown module, got %v", err)
	}
}

func TestDeactivateRole(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	uc := newRoleAdmin(store)

	role, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		Name:      "Temp",
		Matrix: map[entities.PermissionKey]bool{
			{Module: entities.ModuleWPS, Action: entities.ActionApprove}: true,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := uc.DeactivateRole(context.Background(), DeactivateRoleCommand{
		ActorID: "owner-1",
		RoleID:  role.RoleID,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	stored, err := store.GetRole(context.Background(), role.RoleID)
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if stored.IsActive {
		t.Fatal("expected role inactive")
	}
	if stored.Grants(entities.ModuleWPS, entities.ActionApprove) {
		t.Fatal("expected inactive role to grant nothing")
	}

	if err := uc.DeactivateRole(context.Background(), DeactivateRoleCommand{
		ActorID: "owner-1",
		RoleID:  "missing",
	}); !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestListRolesRequiresAdmin(t *testing.T) {
	store := memory.NewStore()
	store.SeedCompany("company-1", "owner-1")
	store.SeedEmployee(entities.Employee{
		UserID:    "member-1",
		CompanyID: "company-1",
	})
	uc := newRoleAdmin(store)

	if _, err := uc.SaveRole(context.Background(), SaveRoleCommand{
		ActorID:   "owner-1",
		CompanyID: "company-1",
		Name:      "Inspector",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	roles, err := uc.ListRoles(context.Background(), "owner-1", "company-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}

	if _, err := uc.ListRoles(context.Background(), "member-1", "company-1"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain member, got %v", err)
	}
}
