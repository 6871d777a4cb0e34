package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompensateFunc undoes a completed step from the data it recorded
type CompensateFunc func(ctx context.Context, rollbackData map[string]any) error

// SagaStep represents a single step in the saga workflow
type SagaStep struct {
	Name       string
	Type       domain.OperationType
	Execute    func(ctx context.Context) (rollbackData map[string]any, err error)
	Compensate CompensateFunc
}

// SagaOptions selects what happens around step execution
type SagaOptions struct {
	// Compensate undoes completed steps when a later step fails
	Compensate bool
	// Persist saves the journal after every transition
	Persist bool
}

// SagaExecutor runs steps in order and records every transition in a SessionState.
// Steps run once; remote calls are never retried.
type SagaExecutor struct {
	stateRepo repository.StateRepository
	state     *domain.SessionState
	steps     []SagaStep
	opts      SagaOptions
	log       *zap.Logger
}

// NewSagaExecutor creates a new saga executor with a fresh session ID
func NewSagaExecutor(stateRepo repository.StateRepository, opts SagaOptions, log *zap.Logger) *SagaExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	if stateRepo == nil {
		opts.Persist = false
	}
	return &SagaExecutor{
		stateRepo: stateRepo,
		state:     domain.NewSessionState(uuid.New().String()),
		opts:      opts,
		log:       log,
	}
}

// LoadExistingSaga loads a persisted session so its completed steps can be undone
func LoadExistingSaga(
	ctx context.Context,
	stateRepo repository.StateRepository,
	sessionID string,
	log *zap.Logger,
) (*SagaExecutor, error) {
	var (
		state *domain.SessionState
		err   error
	)
	if sessionID == "" {
		state, err = stateRepo.LoadLatest(ctx)
	} else {
		state, err = stateRepo.Load(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SagaExecutor{
		stateRepo: stateRepo,
		state:     state,
		opts:      SagaOptions{Compensate: true, Persist: true},
		log:       log,
	}, nil
}

// AddStep adds a step to the saga
func (s *SagaExecutor) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
	s.state.AddOperation(step.Type)
}

// RegisterCompensation attaches a compensating action to an operation type already in the journal
func (s *SagaExecutor) RegisterCompensation(opType domain.OperationType, name string, compensate CompensateFunc) {
	s.steps = append(s.steps, SagaStep{Name: name, Type: opType, Compensate: compensate})
}

// Execute runs the steps in order and, when enabled, compensates on failure.
// The step error is always returned, joined with the compensation error if that failed too.
func (s *SagaExecutor) Execute(ctx context.Context) error {
	s.state.Status = domain.WorkflowStatusRunning
	if s.opts.Persist {
		if err := s.saveState(ctx); err != nil {
			return fmt.Errorf("failed to save initial state: %w", err)
		}
	}
	for _, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkOperationFailed(step.Type, err)
			s.persist(ctx, "failed to save state after step failure")
			if !s.opts.Compensate {
				return fmt.Errorf("step '%s' failed: %w", step.Name, err)
			}
			rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RollbackTimeout)
			rollbackErr := s.rollback(rollbackCtx)
			cancel()
			if rollbackErr != nil {
				return errors.Join(
					fmt.Errorf("step '%s' failed: %w", step.Name, err),
					fmt.Errorf("rollback also failed: %w", rollbackErr),
				)
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
	}
	s.state.Status = domain.WorkflowStatusCompleted
	s.persist(ctx, "failed to save final state")
	return nil
}

func (s *SagaExecutor) executeStep(ctx context.Context, step SagaStep) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state.MarkOperationStarted(step.Type)
	s.persist(ctx, "failed to save state after marking operation started")
	rollbackData, err := step.Execute(ctx)
	if err != nil {
		return err
	}
	s.state.MarkOperationCompleted(step.Type, rollbackData)
	s.persist(ctx, "failed to save state after marking operation completed")
	return nil
}

// Rollback executes compensating actions for completed operations
func (s *SagaExecutor) Rollback(ctx context.Context) error {
	return s.rollback(ctx)
}

func (s *SagaExecutor) rollback(ctx context.Context) error {
	completedOps := s.state.CompletedOperations()
	if len(completedOps) == 0 {
		s.log.Debug("no operations to roll back", zap.String("session", s.state.SessionID))
		s.state.Status = domain.WorkflowStatusRolledBack
		s.persist(ctx, "failed to save state after rollback")
		return nil
	}
	for _, op := range completedOps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rollback canceled: %w", err)
		}
		step := s.findStepByType(op.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		s.log.Warn("rolling back", zap.String("step", step.Name), zap.String("session", s.state.SessionID))
		if err := step.Compensate(ctx, op.RollbackData); err != nil {
			return fmt.Errorf("rollback failed for %s: %w", step.Name, err)
		}
		s.state.MarkOperationRolledBack(op.ID)
		s.persist(ctx, "failed to save state during rollback")
	}
	s.state.Status = domain.WorkflowStatusRolledBack
	s.persist(ctx, "failed to save state after rollback")
	return nil
}

func (s *SagaExecutor) findStepByType(opType domain.OperationType) *SagaStep {
	for i := range s.steps {
		if s.steps[i].Type == opType {
			return &s.steps[i]
		}
	}
	return nil
}

// persist saves the state when enabled; failures are logged and never fail the workflow
func (s *SagaExecutor) persist(ctx context.Context, msg string) {
	if !s.opts.Persist {
		return
	}
	if err := s.saveState(ctx); err != nil {
		s.log.Warn(msg, zap.String("session", s.state.SessionID), zap.Error(err))
	}
}

func (s *SagaExecutor) saveState(ctx context.Context) error {
	return s.stateRepo.Save(ctx, s.state)
}

// SessionID returns the identifier of the journal
func (s *SagaExecutor) SessionID() string {
	return s.state.SessionID
}

// GetState returns the current saga state
func (s *SagaExecutor) GetState() *domain.SessionState {
	return s.state
}

// SetRepository records the repository the session mutates
func (s *SagaExecutor) SetRepository(fullName string) {
	s.state.Repository = fullName
}

// SetBranchName sets the branch name in the state
func (s *SagaExecutor) SetBranchName(branchName string) {
	s.state.BranchName = branchName
}
