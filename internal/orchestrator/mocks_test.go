package orchestrator

import (
	"bytes"
	"context"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/stretchr/testify/mock"
)

// Mock for GithubExtendedRepository - implements ALL methods from GithubExtendedRepository interface
type mockGithubExtendedRepository struct{ mock.Mock }

// GithubRepository methods
func (m *mockGithubExtendedRepository) AuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *mockGithubExtendedRepository) ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositoryRef), args.Error(1)
}
func (m *mockGithubExtendedRepository) ListBranches(ctx context.Context, repo domain.RepositoryRef) ([]string, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *mockGithubExtendedRepository) GetDefaultBranch(ctx context.Context, repo domain.RepositoryRef) (string, error) {
	args := m.Called(ctx, repo)
	return args.String(0), args.Error(1)
}
func (m *mockGithubExtendedRepository) GetBranchSHA(
	ctx context.Context,
	repo domain.RepositoryRef,
	branch string,
) (string, error) {
	args := m.Called(ctx, repo, branch)
	return args.String(0), args.Error(1)
}
func (m *mockGithubExtendedRepository) CreateRef(ctx context.Context, repo domain.RepositoryRef, ref, sha string) error {
	args := m.Called(ctx, repo, ref, sha)
	return args.Error(0)
}
func (m *mockGithubExtendedRepository) CreateFile(
	ctx context.Context,
	repo domain.RepositoryRef,
	file domain.FileSubmission,
	message, branch string,
) (string, error) {
	args := m.Called(ctx, repo, file, message, branch)
	return args.String(0), args.Error(1)
}
func (m *mockGithubExtendedRepository) CreatePullRequest(
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

// GithubExtendedRepository specific methods
func (m *mockGithubExtendedRepository) DeleteRef(ctx context.Context, repo domain.RepositoryRef, ref string) error {
	args := m.Called(ctx, repo, ref)
	return args.Error(0)
}
func (m *mockGithubExtendedRepository) ClosePullRequest(ctx context.Context, repo domain.RepositoryRef, number int) error {
	args := m.Called(ctx, repo, number)
	return args.Error(0)
}
func (m *mockGithubExtendedRepository) GetPRStatus(
	ctx context.Context,
	repo domain.RepositoryRef,
	number int,
) (string, error) {
	args := m.Called(ctx, repo, number)
	return args.String(0), args.Error(1)
}

// MockStateRepository is a mock implementation of StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Save(ctx context.Context, state *domain.SessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionState), args.Error(1)
}

func (m *MockStateRepository) LoadLatest(ctx context.Context) (*domain.SessionState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionState), args.Error(1)
}

func (m *MockStateRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockStateRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// Mock for LocalRemoteRepository
type mockLocalRemoteRepository struct{ mock.Mock }

func (m *mockLocalRemoteRepository) OriginSlug(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
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
