package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
)

// OpenPullRequestUseCase asks for a title and body and opens a pull request into the default branch.
type OpenPullRequestUseCase struct {
	GithubRepo repository.GithubRepository
	Console    console.Console
}

// Execute runs the use case.
func (uc *OpenPullRequestUseCase) Execute(
	ctx context.Context,
	repo domain.RepositoryRef,
	branch string,
) (*domain.PullRequest, error) {
	prSpec, err := uc.readSpec(branch)
	if err != nil {
		return nil, err
	}
	base, err := uc.GithubRepo.GetDefaultBranch(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get default branch: %w", err)
	}
	prSpec.Base = base
	pr, err := uc.GithubRepo.CreatePullRequest(ctx, repo, prSpec.Title, prSpec.Head, prSpec.Base, prSpec.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	uc.Console.Success(fmt.Sprintf("Pull request '%s' created successfully.", prSpec.Title))
	if pr.HTMLURL != "" {
		uc.Console.Println(pr.HTMLURL)
	}
	return pr, nil
}

func (uc *OpenPullRequestUseCase) readSpec(branch string) (domain.PullRequestSpec, error) {
	var title string
	for {
		answer, err := uc.Console.Prompt("Enter the title of the pull request: ")
		if err != nil {
			return domain.PullRequestSpec{}, err
		}
		if strings.TrimSpace(answer) != "" {
			title = answer
			break
		}
		uc.Console.Println("Title of the pull request cannot be empty.")
	}
	body, err := uc.Console.Prompt("Enter the message of the pull request: ")
	if err != nil {
		return domain.PullRequestSpec{}, err
	}
	return domain.PullRequestSpec{Title: title, Body: body, Head: branch}, nil
}
