package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"go.uber.org/zap"
)

// CreateBranchUseCase asks for a unique branch name and creates it at the default branch head.
type CreateBranchUseCase struct {
	GithubRepo repository.GithubRepository
	Console    console.Console
	Log        *zap.Logger
}

// Execute runs the use case and returns the branch name and the commit it points at.
func (uc *CreateBranchUseCase) Execute(ctx context.Context, repo domain.RepositoryRef) (string, string, error) {
	name, err := uc.promptName(ctx, repo)
	if err != nil {
		return "", "", err
	}
	defaultBranch, err := uc.GithubRepo.GetDefaultBranch(ctx, repo)
	if err != nil {
		return "", "", fmt.Errorf("failed to get default branch: %w", err)
	}
	sha, err := uc.GithubRepo.GetBranchSHA(ctx, repo, defaultBranch)
	if err != nil {
		return "", "", fmt.Errorf("failed to get head of %s: %w", defaultBranch, err)
	}
	if err := uc.GithubRepo.CreateRef(ctx, repo, domain.BranchRef(name), sha); err != nil {
		return "", "", fmt.Errorf("failed to create branch: %w", err)
	}
	if uc.Log != nil {
		uc.Log.Debug("branch created", zap.String("branch", name), zap.String("sha", sha))
	}
	uc.Console.Println("Created new branch: " + name)
	return name, sha, nil
}

// promptName re-prompts until the name is non-blank and unused.
// Branches are listed again on every attempt.
func (uc *CreateBranchUseCase) promptName(ctx context.Context, repo domain.RepositoryRef) (string, error) {
	for {
		answer, err := uc.Console.Prompt("Enter the new branch name: ")
		if err != nil {
			return "", err
		}
		name := strings.TrimSpace(answer)
		if name == "" {
			uc.Console.Println("Branch name cannot be empty.")
			continue
		}
		branches, err := uc.GithubRepo.ListBranches(ctx, repo)
		if err != nil {
			return "", fmt.Errorf("failed to list branches: %w", err)
		}
		if slices.Contains(branches, name) {
			uc.Console.Println(fmt.Sprintf("Branch '%s' already exists. Please choose a different name.", name))
			continue
		}
		return name, nil
	}
}
