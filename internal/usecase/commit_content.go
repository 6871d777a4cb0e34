package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/domain"
	"github.com/compozy/prflow/internal/repository"
	"github.com/valyala/fasttemplate"
)

const (
	// ContentTerminator ends multi-line content input.
	ContentTerminator = "END"
	// CommitMessageTemplate is rendered with the committed file path.
	CommitMessageTemplate = "Add {path} with custom content"
)

// CommitContentUseCase asks for a file path and body and commits them to a branch.
type CommitContentUseCase struct {
	GithubRepo repository.GithubRepository
	Console    console.Console
}

// Execute runs the use case and returns the submitted file and the commit SHA.
func (uc *CommitContentUseCase) Execute(
	ctx context.Context,
	repo domain.RepositoryRef,
	branch string,
) (domain.FileSubmission, string, error) {
	file, err := uc.readSubmission()
	if err != nil {
		return domain.FileSubmission{}, "", err
	}
	message := CommitMessage(file.Path)
	sha, err := uc.GithubRepo.CreateFile(ctx, repo, file, message, branch)
	if err != nil {
		return file, "", fmt.Errorf("failed to commit %s: %w", file.Path, err)
	}
	uc.Console.Printf("Added %s to branch %s with content: \n'\n%s'\n", file.Path, branch, file.Content)
	return file, sha, nil
}

func (uc *CommitContentUseCase) readSubmission() (domain.FileSubmission, error) {
	var path string
	for {
		answer, err := uc.Console.Prompt("Enter the file name (e.g., Hello.txt): ")
		if err != nil {
			return domain.FileSubmission{}, err
		}
		path = strings.TrimSpace(answer)
		if path != "" {
			break
		}
		uc.Console.Println("File name cannot be empty.")
	}
	uc.Console.Println("Enter the content of the file (type 'END' to finish): ")
	var content strings.Builder
	for {
		line, err := uc.Console.ReadLine()
		if err != nil {
			return domain.FileSubmission{}, err
		}
		if line == ContentTerminator {
			break
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	return domain.FileSubmission{Path: path, Content: content.String()}, nil
}

// CommitMessage renders the commit message for path.
func CommitMessage(path string) string {
	return fasttemplate.ExecuteString(CommitMessageTemplate, "{", "}", map[string]any{"path": path})
}
