package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
)

// ErrNoRepositories is returned when the authenticated identity owns no repositories.
var ErrNoRepositories = errors.New("no repositories found for the authenticated user")

// SelectRepositoryUseCase lists the user's repositories and asks for one by ordinal.
type SelectRepositoryUseCase struct {
	GithubRepo repository.GithubRepository
	Console    console.Console
	// LocalSlug is the "owner/name" of the working copy's origin, if any.
	LocalSlug string
}

// Execute runs the use case.
func (uc *SelectRepositoryUseCase) Execute(ctx context.Context) (domain.RepositoryRef, error) {
	repos, err := uc.GithubRepo.ListRepositories(ctx)
	if err != nil {
		return domain.RepositoryRef{}, fmt.Errorf("failed to list repositories: %w", err)
	}
	if len(repos) == 0 {
		return domain.RepositoryRef{}, ErrNoRepositories
	}
	uc.Console.Println("Available repositories:")
	for i, repo := range repos {
		marker := ""
		if uc.LocalSlug != "" && strings.EqualFold(repo.Slug(), uc.LocalSlug) {
			marker = " (current directory)"
		}
		uc.Console.Printf("%d. %s%s\n", i+1, repo.Name, marker)
	}
	label := fmt.Sprintf("Select a repository (1-%d): ", len(repos))
	for {
		answer, err := uc.Console.Prompt(label)
		if err != nil {
			return domain.RepositoryRef{}, err
		}
		index, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || index < 1 || index > len(repos) {
			uc.Console.Println("Invalid selection.")
			continue
		}
		return repos[index-1], nil
	}
}
