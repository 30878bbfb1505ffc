package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

type employeeRecord struct {
	ref       ports.EmployeeRef
	companyID string
}

type outboxRecord struct {
	message     ports.OutboxMessage
	published   bool
	publishedAt time.Time
}

// Store is the in-memory implementation of every approval-engine port. It
// backs NewInMemoryModule and the application tests.
type Store struct {
	mu sync.RWMutex

	employees     map[string]employeeRecord
	approvers     map[string]bool
	companyAdmins map[string]bool
	systemAdmins  map[string]bool

	workflows map[string]entities.WorkflowDefinition
	instances map[string]entities.ApprovalInstance
	history   map[string][]entities.HistoryEntry
	outbox    []outboxRecord

	documentStatuses map[string]string
}

func NewStore() *Store {
	return &Store{
		employees:        make(map[string]employeeRecord),
		approvers:        make(map[string]bool),
		companyAdmins:    make(map[string]bool),
		systemAdmins:     make(map[string]bool),
		workflows:        make(map[string]entities.WorkflowDefinition),
		instances:        make(map[string]entities.ApprovalInstance),
		history:          make(map[string][]entities.HistoryEntry),
		documentStatuses: make(map[string]string),
	}
}

func employeeKey(userID, companyID string) string { return userID + "/" + companyID }

func documentKey(documentType, documentID string) string { return documentType + "/" + documentID }

// Seed helpers.

func (s *Store) SeedEmployee(companyID string, ref ports.EmployeeRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[employeeKey(ref.UserID, companyID)] = employeeRecord{ref: ref, companyID: companyID}
}

func (s *Store) SeedApprover(userID, companyID, documentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvers[userID+"/"+companyID+"/"+documentType] = true
}

func (s *Store) SeedCompanyAdmin(userID, companyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companyAdmins[employeeKey(userID, companyID)] = true
}

func (s *Store) SeedSystemAdmin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemAdmins[userID] = true
}

func (s *Store) SeedWorkflow(definition entities.WorkflowDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[definition.WorkflowID] = definition
}

// Test accessors.

// DocumentStatus reports the last status pushed onto a document by a
// transition, and whether any push happened.
func (s *Store) DocumentStatus(documentType, documentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.documentStatuses[documentKey(documentType, documentID)]
	return status, ok
}

func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, row := range s.outbox {
		if !row.published {
			count++
		}
	}
	return count
}

// Clock / IDGenerator.

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) { return uuid.NewString(), nil }

// Directory.

func (s *Store) GetActiveEmployee(_ context.Context, userID, companyID string) (ports.EmployeeRef, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.employees[employeeKey(userID, companyID)]
	if !ok {
		return ports.EmployeeRef{}, false, nil
	}
	return record.ref, true, nil
}

func (s *Store) UsersWithRole(_ context.Context, companyID, roleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, record := range s.employees {
		if record.companyID == companyID && record.ref.RoleID == roleID {
			out = append(out, record.ref.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) UsersInDepartment(_ context.Context, companyID, departmentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, record := range s.employees {
		if record.companyID == companyID && record.ref.DepartmentID == departmentID {
			out = append(out, record.ref.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ActiveMembers(_ context.Context, companyID string, userIDs []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, userID := range userIDs {
		if _, ok := s.employees[employeeKey(userID, companyID)]; ok {
			out = append(out, userID)
		}
	}
	return out, nil
}

// PermissionChecker.

func (s *Store) CanApprove(_ context.Context, actorID, companyID, documentType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvers[actorID+"/"+companyID+"/"+documentType], nil
}

func (s *Store) IsCompanyAdmin(_ context.Context, actorID, companyID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companyAdmins[employeeKey(actorID, companyID)], nil
}

func (s *Store) IsSystemAdmin(_ context.Context, actorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemAdmins[actorID], nil
}

// DocumentStatusSink.

func (s *Store) SetStatus(_ context.Context, documentType, documentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentStatuses[documentKey(documentType, documentID)] = status
	return nil
}

// WorkflowRepository.

func (s *Store) GetDefinition(_ context.Context, workflowID string) (entities.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	definition, ok := s.workflows[workflowID]
	if !ok {
		return entities.WorkflowDefinition{}, domainerrors.ErrWorkflowNotFound
	}
	return definition, nil
}

func (s *Store) FindCompanyWorkflow(_ context.Context, documentType, companyID string) (entities.WorkflowDefinition, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []entities.WorkflowDefinition
	for _, definition := range s.workflows {
		if definition.IsActive && definition.DocumentType == documentType && definition.CompanyID == companyID && companyID != "" {
			candidates = append(candidates, definition)
		}
	}
	if len(candidates) == 0 {
		return entities.WorkflowDefinition{}, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].IsDefault != candidates[j].IsDefault {
			return candidates[i].IsDefault
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates[0], true, nil
}

func (s *Store) FindSystemDefault(_ context.Context, documentType string) (entities.WorkflowDefinition, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, definition := range s.workflows {
		if definition.IsActive && definition.DocumentType == documentType && definition.IsSystemDefault() {
			return definition, true, nil
		}
	}
	return entities.WorkflowDefinition{}, false, nil
}

func (s *Store) SaveDefinition(_ context.Context, definition entities.WorkflowDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[definition.WorkflowID] = definition
	return nil
}

func (s *Store) ListDefinitions(_ context.Context, companyID, documentType string) ([]entities.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.WorkflowDefinition
	for _, definition := range s.workflows {
		if definition.CompanyID != companyID {
			continue
		}
		if documentType != "" && definition.DocumentType != documentType {
			continue
		}
		out = append(out, definition)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// InstanceRepository.

func (s *Store) GetInstance(_ context.Context, instanceID string) (entities.ApprovalInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, ok := s.instances[instanceID]
	if !ok {
		return entities.ApprovalInstance{}, domainerrors.ErrInstanceNotFound
	}
	return instance, nil
}

func (s *Store) FindActiveByDocument(_ context.Context, documentType, documentID string) (entities.ApprovalInstance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findActiveLocked(documentType, documentID)
}

func (s *Store) findActiveLocked(documentType, documentID string) (entities.ApprovalInstance, bool, error) {
	for _, instance := range s.instances {
		if instance.DocumentType == documentType && instance.DocumentID == documentID && instance.Status.IsActive() {
			return instance, true, nil
		}
	}
	return entities.ApprovalInstance{}, false, nil
}

func (s *Store) CreateInstance(_ context.Context, input ports.CreateInstanceInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found, _ := s.findActiveLocked(input.Instance.DocumentType, input.Instance.DocumentID); found {
		return domainerrors.ErrDuplicateActive
	}
	s.instances[input.Instance.InstanceID] = input.Instance
	s.history[input.Instance.InstanceID] = append(s.history[input.Instance.InstanceID], input.History)
	return s.appendOutboxLocked(input.OutboxID, input.Notification, input.History.CreatedAt)
}

func (s *Store) ApplyTransition(_ context.Context, input ports.TransitionInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.instances[input.Instance.InstanceID]
	if !ok {
		return domainerrors.ErrInstanceNotFound
	}
	if current.Version != input.ExpectedVersion {
		return domainerrors.ErrConflict
	}
	s.instances[input.Instance.InstanceID] = input.Instance
	s.history[input.Instance.InstanceID] = append(s.history[input.Instance.InstanceID], input.History)
	if input.DocumentStatus != "" {
		s.documentStatuses[documentKey(input.Instance.DocumentType, input.Instance.DocumentID)] = input.DocumentStatus
	}
	return s.appendOutboxLocked(input.OutboxID, input.Notification, input.History.CreatedAt)
}

func (s *Store) appendOutboxLocked(outboxID string, notification entities.Notification, createdAt time.Time) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, outboxRecord{message: ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: "approval." + notification.EventKind,
		Payload:   payload,
		CreatedAt: createdAt,
	}})
	return nil
}

func (s *Store) ListInstances(_ context.Context, filter ports.InstanceFilter, page ports.Page) ([]entities.ApprovalInstance, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entities.ApprovalInstance
	for _, instance := range s.instances {
		if !matchesFilter(instance, filter) {
			continue
		}
		matched = append(matched, instance)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SubmittedAt.After(matched[j].SubmittedAt) })

	total := int64(len(matched))
	page = page.Normalize()
	start := page.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesFilter(instance entities.ApprovalInstance, filter ports.InstanceFilter) bool {
	if filter.CompanyID != "" && instance.Workspace.CompanyID != filter.CompanyID {
		return false
	}
	if filter.SubmitterID != "" && instance.SubmitterID != filter.SubmitterID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if instance.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Store) CountByStatus(_ context.Context, companyID string) (map[entities.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[entities.Status]int64)
	for _, instance := range s.instances {
		if instance.Workspace.CompanyID == companyID {
			counts[instance.Status]++
		}
	}
	return counts, nil
}

func (s *Store) CountBySubmitter(_ context.Context, companyID, submitterID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, instance := range s.instances {
		if instance.Workspace.CompanyID == companyID && instance.SubmitterID == submitterID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOverdue(_ context.Context, companyID string, submittedBefore time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, instance := range s.instances {
		if instance.Workspace.CompanyID == companyID && instance.Status.IsActive() && instance.SubmittedAt.Before(submittedBefore) {
			count++
		}
	}
	return count, nil
}

// HistoryRepository.

func (s *Store) ListHistory(_ context.Context, instanceID string) ([]entities.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[instanceID]
	out := make([]entities.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// OutboxRepository.

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.OutboxMessage
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		out = append(out, row.message)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			s.outbox[i].publishedAt = publishedAt
			return nil
		}
	}
	return nil
}
