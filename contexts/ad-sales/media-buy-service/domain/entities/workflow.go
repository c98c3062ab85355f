package entities

import "time"

type StepType string

const (
	StepTypeApproval       StepType = "approval"
	StepTypeCreation       StepType = "creation"
	StepTypeBackgroundTask StepType = "background_task"
)

type StepStatus string

const (
	StepStatusApproval  StepStatus = "approval"
	StepStatusWorking   StepStatus = "working"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusRejected  StepStatus = "rejected"
)

// IsTerminal reports whether the status is final. Terminal steps are never
// revisited.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed, StepStatusRejected:
		return true
	default:
		return false
	}
}

type StepOwner string

const (
	OwnerPublisher StepOwner = "publisher"
	OwnerSystem    StepOwner = "system"
)

type ObjectAction string

const (
	ObjectActionCreate   ObjectAction = "create"
	ObjectActionActivate ObjectAction = "activate"
	ObjectActionApprove  ObjectAction = "approve"
)

// WorkflowStep is a persisted unit of pending/working/approved work awaiting
// a human or background action.
type WorkflowStep struct {
	StepID             string
	ContextID          string
	Type               StepType
	ToolName           string
	RequestData        map[string]any
	Status             StepStatus
	Owner              StepOwner
	AssignedTo         string
	TransactionDetails map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// WorkflowContext links a workflow step to a tenant and principal. Its
// lifecycle is 1:1 with the step that spawned it.
type WorkflowContext struct {
	ContextID   string
	TenantID    string
	PrincipalID string
	CreatedAt   time.Time
}

// ObjectWorkflowMapping associates a business object with a workflow step
// and the action the step represents. It answers "what workflow is pending
// for this object?" queries.
type ObjectWorkflowMapping struct {
	ObjectType string
	ObjectID   string
	StepID     string
	Action     ObjectAction
	CreatedAt  time.Time
}
