package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/prflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// savedSession mirrors a journal read back from disk, where numbers decode as float64.
func savedSession(id string) *domain.SessionState {
	state := domain.NewSessionState(id)
	state.Repository = "octo/widget"
	state.BranchName = "feature"
	steps := []struct {
		opType domain.OperationType
		data   map[string]any
	}{
		{domain.OperationTypeCreateBranch, map[string]any{
			"owner": "octo", "repo": "widget", "ref": "refs/heads/feature", "created_in_session": true,
		}},
		{domain.OperationTypeCommitFile, map[string]any{"owner": "octo", "repo": "widget", "path": "a.txt"}},
		{domain.OperationTypeCreatePR, map[string]any{"owner": "octo", "repo": "widget", "pr_number": float64(9)}},
	}
	for _, step := range steps {
		state.AddOperation(step.opType)
		state.MarkOperationStarted(step.opType)
		state.MarkOperationCompleted(step.opType, step.data)
	}
	state.Status = domain.WorkflowStatusCompleted
	return state
}

func TestRollbackOrchestrator_Execute(t *testing.T) {
	t.Run("Should close the pull request before deleting the branch", func(t *testing.T) {
		githubRepo := new(mockGithubExtendedRepository)
		stateRepo := new(MockStateRepository)
		var calls []string
		stateRepo.On("LoadLatest", mock.Anything).Return(savedSession("s1"), nil)
		stateRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		githubRepo.On("GetPRStatus", mock.Anything, widgetRef, 9).Return("open", nil)
		githubRepo.On("ClosePullRequest", mock.Anything, widgetRef, 9).
			Run(func(mock.Arguments) { calls = append(calls, "close") }).Return(nil)
		githubRepo.On("DeleteRef", mock.Anything, widgetRef, "refs/heads/feature").
			Run(func(mock.Arguments) { calls = append(calls, "delete") }).Return(nil)
		con, out := scriptedConsole()
		o := NewRollbackOrchestrator(githubRepo, stateRepo, con, nil)
		require.NoError(t, o.Execute(context.Background(), ""))
		assert.Equal(t, []string{"close", "delete"}, calls)
		assert.Contains(t, out.String(), "Rolled back session s1 for octo/widget.")
		githubRepo.AssertExpectations(t)
	})
	t.Run("Should skip a session already rolled back", func(t *testing.T) {
		githubRepo := new(mockGithubExtendedRepository)
		stateRepo := new(MockStateRepository)
		state := savedSession("s2")
		state.Status = domain.WorkflowStatusRolledBack
		stateRepo.On("Load", mock.Anything, "s2").Return(state, nil)
		con, out := scriptedConsole()
		o := NewRollbackOrchestrator(githubRepo, stateRepo, con, nil)
		require.NoError(t, o.Execute(context.Background(), "s2"))
		assert.Contains(t, out.String(), "Session s2 is already rolled back.")
		githubRepo.AssertNotCalled(t, "DeleteRef", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("Should stop at the first failed compensation", func(t *testing.T) {
		githubRepo := new(mockGithubExtendedRepository)
		stateRepo := new(MockStateRepository)
		stateRepo.On("Load", mock.Anything, "s3").Return(savedSession("s3"), nil)
		stateRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		githubRepo.On("GetPRStatus", mock.Anything, widgetRef, 9).Return("", errors.New("boom"))
		con, _ := scriptedConsole()
		o := NewRollbackOrchestrator(githubRepo, stateRepo, con, nil)
		err := o.Execute(context.Background(), "s3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rollback failed")
		githubRepo.AssertNotCalled(t, "DeleteRef", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("Should report a missing session", func(t *testing.T) {
		stateRepo := new(MockStateRepository)
		stateRepo.On("LoadLatest", mock.Anything).Return(nil, errors.New("session not found"))
		con, _ := scriptedConsole()
		o := NewRollbackOrchestrator(new(mockGithubExtendedRepository), stateRepo, con, nil)
		assert.Error(t, o.Execute(context.Background(), ""))
	})
}
