package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"github.com/compozy/prflow/internal/usecase"
	"go.uber.org/zap"
)

// WorkflowConfig contains configuration for the branch and pull request workflow.
type WorkflowConfig struct {
	Cleanup     bool // Delete the branch created in this session when a later step fails
	SaveSession bool // Persist the session journal for a later rollback
}

// BranchPROrchestrator runs the interactive workflow from authentication to the opened pull request.
type BranchPROrchestrator struct {
	githubRepo repository.GithubExtendedRepository
	stateRepo  repository.StateRepository
	remoteRepo repository.LocalRemoteRepository
	console    console.Console
	log        *zap.Logger
}

// NewBranchPROrchestrator creates a new branch and pull request orchestrator.
// remoteRepo may be nil when no working copy should be inspected.
func NewBranchPROrchestrator(
	githubRepo repository.GithubExtendedRepository,
	stateRepo repository.StateRepository,
	remoteRepo repository.LocalRemoteRepository,
	con console.Console,
	log *zap.Logger,
) *BranchPROrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &BranchPROrchestrator{
		githubRepo: githubRepo,
		stateRepo:  stateRepo,
		remoteRepo: remoteRepo,
		console:    con,
		log:        log,
	}
}

// Execute runs the complete workflow.
// Owning no repositories is a successful end, not an error.
func (o *BranchPROrchestrator) Execute(ctx context.Context, cfg WorkflowConfig) error {
	session, err := (&usecase.OpenSessionUseCase{GithubRepo: o.githubRepo, Log: o.log}).Execute(ctx)
	if err != nil {
		return err
	}
	o.log.Debug("session opened", zap.String("login", session.Login))
	selector := &usecase.SelectRepositoryUseCase{
		GithubRepo: o.githubRepo,
		Console:    o.console,
		LocalSlug:  o.localSlug(ctx),
	}
	repo, err := selector.Execute(ctx)
	if errors.Is(err, usecase.ErrNoRepositories) {
		o.console.Println("No repositories found for the authenticated user.")
		return nil
	}
	if err != nil {
		return err
	}
	o.console.Println("Selected repository: " + repo.Name)
	saga := NewSagaExecutor(o.stateRepo, SagaOptions{Compensate: cfg.Cleanup, Persist: cfg.SaveSession}, o.log)
	saga.SetRepository(repo.Slug())
	compensator := NewCompensatingActions(o.githubRepo, o.log)
	wctx := &workflowContext{repo: repo}
	o.addCreateBranchStep(saga, compensator, wctx)
	o.addCommitFileStep(saga, compensator, wctx)
	o.addCreatePRStep(saga, compensator, wctx)
	err = saga.Execute(ctx)
	if cfg.SaveSession {
		o.console.Printf("Session ID: %s\n", saga.SessionID())
	}
	if err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}
	return nil
}

// workflowContext holds shared state for workflow execution
type workflowContext struct {
	repo   domain.RepositoryRef
	branch string
}

func (o *BranchPROrchestrator) addCreateBranchStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	uc := &usecase.CreateBranchUseCase{GithubRepo: o.githubRepo, Console: o.console, Log: o.log}
	saga.AddStep(SagaStep{
		Name: "Create Branch",
		Type: domain.OperationTypeCreateBranch,
		Execute: func(ctx context.Context) (map[string]any, error) {
			branch, sha, err := uc.Execute(ctx, wctx.repo)
			if err != nil {
				return nil, err
			}
			wctx.branch = branch
			saga.SetBranchName(branch)
			return map[string]any{
				rollbackKeyOwner:            wctx.repo.Owner,
				rollbackKeyRepo:             wctx.repo.Name,
				rollbackKeyRef:              domain.BranchRef(branch),
				rollbackKeyBranch:           branch,
				rollbackKeySHA:              sha,
				rollbackKeyCreatedInSession: true,
			}, nil
		},
		Compensate: compensator.DeleteBranch,
	})
}

func (o *BranchPROrchestrator) addCommitFileStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	uc := &usecase.CommitContentUseCase{GithubRepo: o.githubRepo, Console: o.console}
	saga.AddStep(SagaStep{
		Name: "Commit File",
		Type: domain.OperationTypeCommitFile,
		Execute: func(ctx context.Context) (map[string]any, error) {
			file, sha, err := uc.Execute(ctx, wctx.repo, wctx.branch)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				rollbackKeyOwner:     wctx.repo.Owner,
				rollbackKeyRepo:      wctx.repo.Name,
				rollbackKeyBranch:    wctx.branch,
				rollbackKeyPath:      file.Path,
				rollbackKeyCommitSHA: sha,
			}, nil
		},
		// The commit only lives on the session branch and goes away with it
		Compensate: compensator.NoOp,
	})
}

func (o *BranchPROrchestrator) addCreatePRStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	uc := &usecase.OpenPullRequestUseCase{GithubRepo: o.githubRepo, Console: o.console}
	saga.AddStep(SagaStep{
		Name: "Create Pull Request",
		Type: domain.OperationTypeCreatePR,
		Execute: func(ctx context.Context) (map[string]any, error) {
			pr, err := uc.Execute(ctx, wctx.repo, wctx.branch)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				rollbackKeyOwner:    wctx.repo.Owner,
				rollbackKeyRepo:     wctx.repo.Name,
				rollbackKeyPRNumber: pr.Number,
				rollbackKeyPRURL:    pr.HTMLURL,
			}, nil
		},
		Compensate: compensator.ClosePullRequest,
	})
}

// localSlug returns the origin of the working copy, or "" when there is none
func (o *BranchPROrchestrator) localSlug(ctx context.Context) string {
	if o.remoteRepo == nil {
		return ""
	}
	slug, err := o.remoteRepo.OriginSlug(ctx)
	if err != nil {
		o.log.Debug("no local origin remote", zap.Error(err))
		return ""
	}
	return slug
}
