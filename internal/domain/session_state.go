package domain

import (
	"time"
)

// WorkflowStatus represents the overall status of a branch/PR workflow
type WorkflowStatus string

const (
	WorkflowStatusPending    WorkflowStatus = "pending"
	WorkflowStatusRunning    WorkflowStatus = "running"
	WorkflowStatusCompleted  WorkflowStatus = "completed"
	WorkflowStatusFailed     WorkflowStatus = "failed"
	WorkflowStatusRolledBack WorkflowStatus = "rolled_back"
)

// OperationStatus represents the status of an individual operation
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "pending"
	OperationStatusRunning    OperationStatus = "running"
	OperationStatusCompleted  OperationStatus = "completed"
	OperationStatusFailed     OperationStatus = "failed"
	OperationStatusRolledBack OperationStatus = "rolled_back"
)

// OperationType identifies a remote mutation performed by the workflow
type OperationType string

const (
	OperationTypeCreateBranch OperationType = "create_branch"
	OperationTypeCommitFile   OperationType = "commit_file"
	OperationTypeCreatePR     OperationType = "create_pr"
)

// SessionState is the journal of one workflow run.
type SessionState struct {
	SessionID  string            `json:"session_id"`
	StartedAt  time.Time         `json:"started_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Repository string            `json:"repository"`
	BranchName string            `json:"branch_name"`
	Operations []OperationRecord `json:"operations"`
	Status     WorkflowStatus    `json:"status"`
	Error      string            `json:"error,omitempty"`
}

// OperationRecord represents a single operation in the workflow
type OperationRecord struct {
	ID           string          `json:"id"`
	Type         OperationType   `json:"type"`
	Status       OperationStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	RollbackData map[string]any  `json:"rollback_data,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// NewSessionState creates an empty pending journal.
func NewSessionState(sessionID string) *SessionState {
	now := time.Now()
	return &SessionState{
		SessionID:  sessionID,
		StartedAt:  now,
		UpdatedAt:  now,
		Operations: []OperationRecord{},
		Status:     WorkflowStatusPending,
	}
}

// AddOperation appends a pending record for opType.
func (s *SessionState) AddOperation(opType OperationType) *OperationRecord {
	s.Operations = append(s.Operations, OperationRecord{
		ID:        string(opType) + "_" + time.Now().Format("20060102150405"),
		Type:      opType,
		Status:    OperationStatusPending,
		StartedAt: time.Now(),
	})
	s.touch()
	return &s.Operations[len(s.Operations)-1]
}

// CompletedOperations returns completed operations, newest first.
func (s *SessionState) CompletedOperations() []OperationRecord {
	var completed []OperationRecord
	for i := len(s.Operations) - 1; i >= 0; i-- {
		if s.Operations[i].Status == OperationStatusCompleted {
			completed = append(completed, s.Operations[i])
		}
	}
	return completed
}

// MarkOperationStarted moves the first pending record of opType to running.
func (s *SessionState) MarkOperationStarted(opType OperationType) {
	if op := s.find(opType, OperationStatusPending); op != nil {
		op.Status = OperationStatusRunning
		op.StartedAt = time.Now()
		s.touch()
	}
}

// MarkOperationCompleted stores rollbackData on the running record of opType.
func (s *SessionState) MarkOperationCompleted(opType OperationType, rollbackData map[string]any) {
	if op := s.find(opType, OperationStatusRunning); op != nil {
		now := time.Now()
		op.Status = OperationStatusCompleted
		op.CompletedAt = &now
		op.RollbackData = rollbackData
		s.touch()
	}
}

// MarkOperationFailed records err on the running record and fails the workflow.
func (s *SessionState) MarkOperationFailed(opType OperationType, err error) {
	if op := s.find(opType, OperationStatusRunning); op != nil {
		now := time.Now()
		op.Status = OperationStatusFailed
		op.CompletedAt = &now
		op.Error = err.Error()
	}
	s.Status = WorkflowStatusFailed
	s.Error = err.Error()
	s.touch()
}

// MarkOperationRolledBack flags the completed record with the given ID as undone.
func (s *SessionState) MarkOperationRolledBack(id string) {
	for i := range s.Operations {
		if s.Operations[i].ID == id && s.Operations[i].Status == OperationStatusCompleted {
			s.Operations[i].Status = OperationStatusRolledBack
			s.touch()
			return
		}
	}
}

func (s *SessionState) find(opType OperationType, status OperationStatus) *OperationRecord {
	for i := range s.Operations {
		if s.Operations[i].Type == opType && s.Operations[i].Status == status {
			return &s.Operations[i]
		}
	}
	return nil
}

func (s *SessionState) touch() {
	s.UpdatedAt = time.Now()
}
