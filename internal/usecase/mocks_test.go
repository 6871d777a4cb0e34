package usecase

import (
	"bytes"
	"context"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/stretchr/testify/mock"
)

// Mock for GithubRepository
type mockGithubRepository struct {
	mock.Mock
}

func (m *mockGithubRepository) AuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGithubRepository) ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositoryRef), args.Error(1)
}

func (m *mockGithubRepository) ListBranches(ctx context.Context, repo domain.RepositoryRef) ([]string, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGithubRepository) GetDefaultBranch(ctx context.Context, repo domain.RepositoryRef) (string, error) {
	args := m.Called(ctx, repo)
	return args.String(0), args.Error(1)
}

func (m *mockGithubRepository) GetBranchSHA(
	ctx context.Context,
	repo domain.RepositoryRef,
	branch string,
) (string, error) {
	args := m.Called(ctx, repo, branch)
	return args.String(0), args.Error(1)
}

func (m *mockGithubRepository) CreateRef(ctx context.Context, repo domain.RepositoryRef, ref, sha string) error {
	args := m.Called(ctx, repo, ref, sha)
	return args.Error(0)
}

func (m *mockGithubRepository) CreateFile(
	ctx context.Context,
	repo domain.RepositoryRef,
	file domain.FileSubmission,
	message, branch string,
) (string, error) {
	args := m.Called(ctx, repo, file, message, branch)
	return args.String(0), args.Error(1)
}

func (m *mockGithubRepository) CreatePullRequest(
	ctx context.Context,
	repo domain.RepositoryRef,
	title, head, base, body string,
) (*domain.PullRequest, error) {
	args := m.Called(ctx, repo, title, head, base, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

// scriptedConsole feeds input lines to a real console and captures what it prints.
func scriptedConsole(lines ...string) (console.Console, *bytes.Buffer) {
	out := new(bytes.Buffer)
	input := ""
	if len(lines) > 0 {
		input = strings.Join(lines, "\n") + "\n"
	}
	return console.New(strings.NewReader(input), out), out
}

var testRepo = domain.RepositoryRef{
	ID:            1,
	Owner:         "octo",
	Name:          "widget",
	FullName:      "octo/widget",
	DefaultBranch: "main",
}
