package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"go.uber.org/zap"
)

// Keys of the rollback data recorded by each step
const (
	rollbackKeyOwner            = "owner"
	rollbackKeyRepo             = "repo"
	rollbackKeyRef              = "ref"
	rollbackKeyBranch           = "branch"
	rollbackKeySHA              = "sha"
	rollbackKeyCreatedInSession = "created_in_session"
	rollbackKeyPath             = "path"
	rollbackKeyCommitSHA        = "commit_sha"
	rollbackKeyPRNumber         = "pr_number"
	rollbackKeyPRURL            = "pr_url"
)

// CompensatingActions provides idempotent undo operations for the remote mutations of a session
type CompensatingActions struct {
	githubRepo repository.GithubExtendedRepository
	log        *zap.Logger
}

// NewCompensatingActions creates a new compensating actions handler
func NewCompensatingActions(githubRepo repository.GithubExtendedRepository, log *zap.Logger) *CompensatingActions {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompensatingActions{
		githubRepo: githubRepo,
		log:        log,
	}
}

// DeleteBranch deletes the branch ref created in the session; a ref already gone is success
func (ca *CompensatingActions) DeleteBranch(ctx context.Context, rollbackData map[string]any) error {
	ref, ok := rollbackData[rollbackKeyRef].(string)
	if !ok || ref == "" {
		return fmt.Errorf("ref not found in rollback data")
	}
	if created, _ := rollbackData[rollbackKeyCreatedInSession].(bool); !created {
		ca.log.Warn("branch existed before this session, skipping deletion", zap.String("ref", ref))
		return nil
	}
	repo, err := repoFromRollbackData(rollbackData)
	if err != nil {
		return err
	}
	if err := ca.githubRepo.DeleteRef(ctx, repo, ref); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	ca.log.Warn("deleted branch", zap.String("repo", repo.Slug()), zap.String("ref", ref))
	return nil
}

// ClosePullRequest closes the pull request opened in the session.
// Closed pull requests are skipped and merged ones cannot be undone.
func (ca *CompensatingActions) ClosePullRequest(ctx context.Context, rollbackData map[string]any) error {
	prNumber := extractPRNumber(rollbackData)
	if prNumber == 0 {
		return nil
	}
	repo, err := repoFromRollbackData(rollbackData)
	if err != nil {
		return err
	}
	status, err := ca.githubRepo.GetPRStatus(ctx, repo, prNumber)
	if err != nil {
		return fmt.Errorf("failed to check PR status: %w", err)
	}
	switch status {
	case "closed":
		ca.log.Warn("pull request is already closed", zap.Int("number", prNumber))
		return nil
	case "merged":
		return fmt.Errorf("pull request #%d is already merged", prNumber)
	}
	if err := ca.githubRepo.ClosePullRequest(ctx, repo, prNumber); err != nil {
		return fmt.Errorf("failed to close PR #%d: %w", prNumber, err)
	}
	ca.log.Warn("closed pull request", zap.String("repo", repo.Slug()), zap.Int("number", prNumber))
	return nil
}

// NoOp is a no-operation compensating action for operations removed along with their branch
func (ca *CompensatingActions) NoOp(_ context.Context, _ map[string]any) error {
	return nil
}

func repoFromRollbackData(rollbackData map[string]any) (domain.RepositoryRef, error) {
	owner, _ := rollbackData[rollbackKeyOwner].(string)
	name, _ := rollbackData[rollbackKeyRepo].(string)
	if owner == "" || name == "" {
		return domain.RepositoryRef{}, fmt.Errorf("repository not found in rollback data")
	}
	return domain.RepositoryRef{Owner: owner, Name: name, FullName: owner + "/" + name}, nil
}

func extractPRNumber(rollbackData map[string]any) int {
	if prNumber, ok := rollbackData[rollbackKeyPRNumber].(int); ok {
		return prNumber
	}
	// Try float64 (JSON unmarshaling)
	if prFloat, ok := rollbackData[rollbackKeyPRNumber].(float64); ok {
		return int(prFloat)
	}
	return 0
}
