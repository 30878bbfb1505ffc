package entities

import "time"

// SelectorKind closes the set of approver selector variants.
type SelectorKind string

const (
	SelectByRole       SelectorKind = "by_role"
	SelectByUser       SelectorKind = "by_user"
	SelectByDepartment SelectorKind = "by_department"
)

var validSelectorKinds = map[SelectorKind]bool{
	SelectByRole:       true,
	SelectByUser:       true,
	SelectByDepartment: true,
}

// ApproverSelector names who may act on one workflow step. Kind is a closed
// enum; each variant resolves to a user-id set through its own typed
// resolution path.
type ApproverSelector struct {
	Kind SelectorKind `json:"kind"`
	IDs  []string     `json:"ids"`
}

func (s ApproverSelector) IsValid() bool {
	return validSelectorKinds[s.Kind] && len(s.IDs) > 0
}

// WorkflowStep is one stage of a workflow with its eligible approvers.
type WorkflowStep struct {
	Name     string           `json:"name"`
	Selector ApproverSelector `json:"selector"`
}

// WorkflowDefinition is an ordered approval template for one document type.
// CompanyID empty means the system-wide default.
type WorkflowDefinition struct {
	WorkflowID   string
	DocumentType string
	CompanyID    string
	Name         string
	Steps        []WorkflowStep
	IsDefault    bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d WorkflowDefinition) StepCount() int {
	return len(d.Steps)
}

// StepAt returns the 1-based step, if it exists.
func (d WorkflowDefinition) StepAt(number int) (WorkflowStep, bool) {
	if number < 1 || number > len(d.Steps) {
		return WorkflowStep{}, false
	}
	return d.Steps[number-1], true
}

// IsSystemDefault reports whether the definition belongs to no company.
func (d WorkflowDefinition) IsSystemDefault() bool {
	return d.CompanyID == ""
}

func (d WorkflowDefinition) Validate() bool {
	if d.DocumentType == "" || len(d.Steps) == 0 {
		return false
	}
	for _, step := range d.Steps {
		if step.Name == "" || !step.Selector.IsValid() {
			return false
		}
	}
	return true
}
