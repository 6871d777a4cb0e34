package repository

import (
	"context"

	"github.com/compozy/prflow/internal/domain"
)

// GithubRepository defines the GitHub API operations used by the workflow.
type GithubRepository interface {
	// AuthenticatedUser performs the session handshake and returns the login.
	AuthenticatedUser(ctx context.Context) (string, error)
	ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error)
	ListBranches(ctx context.Context, repo domain.RepositoryRef) ([]string, error)
	GetDefaultBranch(ctx context.Context, repo domain.RepositoryRef) (string, error)
	GetBranchSHA(ctx context.Context, repo domain.RepositoryRef, branch string) (string, error)
	CreateRef(ctx context.Context, repo domain.RepositoryRef, ref, sha string) error
	// CreateFile commits file to branch and returns the commit SHA.
	CreateFile(
		ctx context.Context,
		repo domain.RepositoryRef,
		file domain.FileSubmission,
		message, branch string,
	) (string, error)
	CreatePullRequest(
		ctx context.Context,
		repo domain.RepositoryRef,
		title, head, base, body string,
	) (*domain.PullRequest, error)
}
