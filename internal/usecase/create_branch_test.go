package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/compozy/prflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func countOf(s, substr string) int {
	return strings.Count(s, substr)
}

func TestCreateBranchUseCase_Execute(t *testing.T) {
	t.Run("Should create the branch at the default branch head", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		con, out := scriptedConsole("new-branch")
		uc := &CreateBranchUseCase{GithubRepo: githubRepo, Console: con, Log: zap.NewNop()}
		ctx := context.Background()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main", "dev"}, nil)
		githubRepo.On("GetDefaultBranch", ctx, testRepo).Return("main", nil)
		githubRepo.On("GetBranchSHA", ctx, testRepo, "main").Return("abc123", nil)
		githubRepo.On("CreateRef", ctx, testRepo, "refs/heads/new-branch", "abc123").Return(nil)
		branch, sha, err := uc.Execute(ctx, testRepo)
		require.NoError(t, err)
		assert.Equal(t, "new-branch", branch)
		assert.Equal(t, "abc123", sha)
		assert.Contains(t, out.String(), "Created new branch: new-branch\n")
		githubRepo.AssertExpectations(t)
	})
	t.Run("Should re-prompt on blank and colliding names without creating", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		con, out := scriptedConsole("", "   ", "main", "dev", "fresh")
		uc := &CreateBranchUseCase{GithubRepo: githubRepo, Console: con}
		ctx := context.Background()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main", "dev"}, nil)
		githubRepo.On("GetDefaultBranch", ctx, testRepo).Return("main", nil)
		githubRepo.On("GetBranchSHA", ctx, testRepo, "main").Return("abc123", nil)
		githubRepo.On("CreateRef", ctx, testRepo, "refs/heads/fresh", "abc123").Return(nil).Once()
		branch, _, err := uc.Execute(ctx, testRepo)
		require.NoError(t, err)
		assert.Equal(t, "fresh", branch)
		assert.Equal(t, 2, countOf(out.String(), "Branch name cannot be empty."))
		assert.Contains(t, out.String(), "Branch 'main' already exists. Please choose a different name.")
		assert.Contains(t, out.String(), "Branch 'dev' already exists. Please choose a different name.")
		githubRepo.AssertNumberOfCalls(t, "ListBranches", 3)
		githubRepo.AssertNumberOfCalls(t, "CreateRef", 1)
	})
	t.Run("Should see branches created between attempts", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		con, out := scriptedConsole("race", "other")
		uc := &CreateBranchUseCase{GithubRepo: githubRepo, Console: con}
		ctx := context.Background()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main", "race"}, nil).Once()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main", "race", "other"}, nil).Once()
		_, _, err := uc.Execute(ctx, testRepo)
		assert.True(t, errors.Is(err, domain.ErrInputClosed))
		assert.Contains(t, out.String(), "Branch 'other' already exists.")
		githubRepo.AssertNotCalled(t, "CreateRef", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("Should propagate a creation failure", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		con, out := scriptedConsole("feature-x")
		uc := &CreateBranchUseCase{GithubRepo: githubRepo, Console: con}
		ctx := context.Background()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main"}, nil)
		githubRepo.On("GetDefaultBranch", ctx, testRepo).Return("main", nil)
		githubRepo.On("GetBranchSHA", ctx, testRepo, "main").Return("abc123", nil)
		githubRepo.On("CreateRef", ctx, testRepo, "refs/heads/feature-x", "abc123").
			Return(fmt.Errorf("%w: reference already exists", domain.ErrRemoteCall))
		_, _, err := uc.Execute(ctx, testRepo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create branch")
		assert.Equal(t, domain.KindRemoteCall, domain.KindOf(err))
		assert.NotContains(t, out.String(), "Created new branch")
	})
	t.Run("Should propagate a failure resolving the default branch", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		con, _ := scriptedConsole("feature-x")
		uc := &CreateBranchUseCase{GithubRepo: githubRepo, Console: con}
		ctx := context.Background()
		githubRepo.On("ListBranches", ctx, testRepo).Return([]string{"main"}, nil)
		githubRepo.On("GetDefaultBranch", ctx, testRepo).Return("", fmt.Errorf("%w: gone", domain.ErrRemoteCall))
		_, _, err := uc.Execute(ctx, testRepo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get default branch")
	})
}
