package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the directory and role
// repository ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	companyOwners map[string]string             // company id -> owner user id
	employees     map[string]entities.Employee  // user id + "/" + company id
	roles         map[string]entities.Role      // role id
	systemAdmins  map[string]bool               // user id
}

func NewStore() *Store {
	return &Store{
		companyOwners: make(map[string]string),
		employees:     make(map[string]entities.Employee),
		roles:         make(map[string]entities.Role),
		systemAdmins:  make(map[string]bool),
	}
}

// ── Seeding helpers ──

func (s *Store) SeedCompany(companyID, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companyOwners[companyID] = ownerID
}

func (s *Store) SeedEmployee(employee entities.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if employee.DataScope == "" {
		employee.DataScope = entities.DataScopeFactory
	}
	employee.IsActive = true
	s.employees[employeeKey(employee.UserID, employee.CompanyID)] = employee
}

func (s *Store) SeedRole(role entities.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.RoleID] = role
}

func (s *Store) SeedSystemAdmin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemAdmins[userID] = true
}

// ── Directory port ──

func (s *Store) IsCompanyOwner(_ context.Context, userID, companyID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companyOwners[companyID] == userID && userID != "", nil
}

func (s *Store) GetActiveEmployee(_ context.Context, userID, companyID string) (entities.Employee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	employee, ok := s.employees[employeeKey(userID, companyID)]
	if !ok || !employee.IsActive {
		return entities.Employee{}, false, nil
	}
	return employee, true, nil
}

func (s *Store) IsSystemAdmin(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemAdmins[userID], nil
}

// ── RoleRepository port ──

func (s *Store) GetRole(_ context.Context, roleID string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[roleID]
	if !ok {
		return entities.Role{}, domainerrors.ErrRoleNotFound
	}
	return role, nil
}

func (s *Store) ListRoles(_ context.Context, companyID string) ([]entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Role, 0)
	for _, role := range s.roles {
		if role.CompanyID == companyID {
			items = append(items, role)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *Store) SaveRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Whole-role replacement keeps the matrix write atomic for readers.
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) DeactivateRole(_ context.Context, roleID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[roleID]
	if !ok {
		return domainerrors.ErrRoleNotFound
	}
	role.IsActive = false
	role.UpdatedAt = at.UTC()
	s.roles[roleID] = role
	return nil
}

// ── Clock / IDGenerator ports ──

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func employeeKey(userID, companyID string) string {
	return userID + "/" + companyID
}
