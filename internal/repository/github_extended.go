package repository

import (
	"context"

	"github.com/compozy/prflow/internal/domain"
)

// GithubExtendedRepository extends GithubRepository with the operations used to undo a session.
type GithubExtendedRepository interface {
	GithubRepository
	// DeleteRef deletes a ref; a ref that no longer exists is not an error
	DeleteRef(ctx context.Context, repo domain.RepositoryRef, ref string) error
	// ClosePullRequest closes a pull request
	ClosePullRequest(ctx context.Context, repo domain.RepositoryRef, number int) error
	// GetPRStatus returns the status of a pull request (open, closed, merged)
	GetPRStatus(ctx context.Context, repo domain.RepositoryRef, number int) (string, error)
}
