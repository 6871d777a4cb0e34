package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"go.uber.org/zap"
)

// RollbackOrchestrator undoes the remote mutations of a saved session.
type RollbackOrchestrator struct {
	githubRepo repository.GithubExtendedRepository
	stateRepo  repository.StateRepository
	console    console.Console
	log        *zap.Logger
}

// NewRollbackOrchestrator creates a new rollback orchestrator.
func NewRollbackOrchestrator(
	githubRepo repository.GithubExtendedRepository,
	stateRepo repository.StateRepository,
	con console.Console,
	log *zap.Logger,
) *RollbackOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &RollbackOrchestrator{
		githubRepo: githubRepo,
		stateRepo:  stateRepo,
		console:    con,
		log:        log,
	}
}

// Execute rolls back sessionID, or the latest saved session when it is empty.
func (o *RollbackOrchestrator) Execute(ctx context.Context, sessionID string) error {
	saga, err := LoadExistingSaga(ctx, o.stateRepo, sessionID, o.log)
	if err != nil {
		return err
	}
	state := saga.GetState()
	if state.Status == domain.WorkflowStatusRolledBack {
		o.console.Println(fmt.Sprintf("Session %s is already rolled back.", state.SessionID))
		return nil
	}
	o.rebuildSagaSteps(saga, NewCompensatingActions(o.githubRepo, o.log))
	ctx, cancel := context.WithTimeout(ctx, RollbackTimeout)
	defer cancel()
	if err := saga.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	o.console.Success(fmt.Sprintf("Rolled back session %s for %s.", state.SessionID, state.Repository))
	return nil
}

// rebuildSagaSteps maps journal operation types back to their compensating actions
func (o *RollbackOrchestrator) rebuildSagaSteps(saga *SagaExecutor, compensator *CompensatingActions) {
	saga.RegisterCompensation(domain.OperationTypeCreateBranch, "Create Branch", compensator.DeleteBranch)
	saga.RegisterCompensation(domain.OperationTypeCommitFile, "Commit File", compensator.NoOp)
	saga.RegisterCompensation(domain.OperationTypeCreatePR, "Create Pull Request", compensator.ClosePullRequest)
}
