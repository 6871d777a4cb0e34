package repository

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// LocalRemoteRepository reads remote information from the git working copy around a directory.
type LocalRemoteRepository interface {
	// OriginSlug returns "owner/name" for the origin remote.
	OriginSlug(ctx context.Context) (string, error)
}

type gitRemoteRepository struct {
	dir string
}

// NewLocalRemoteRepository inspects the working copy containing dir.
func NewLocalRemoteRepository(dir string) LocalRemoteRepository {
	return &gitRemoteRepository{dir: dir}
}

func (r *gitRemoteRepository) OriginSlug(_ context.Context) (string, error) {
	repo, err := git.PlainOpenWithOptions(r.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository: %w", err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL")
	}
	owner, name, err := parseGitRemoteURL(urls[0])
	if err != nil {
		return "", err
	}
	return owner + "/" + name, nil
}

// parseGitRemoteURL extracts owner and repository from https, ssh, scp-style or path remotes.
func parseGitRemoteURL(raw string) (string, string, error) {
	remotePath := strings.TrimSpace(raw)
	switch {
	case strings.Contains(remotePath, "://"):
		u, err := url.Parse(remotePath)
		if err != nil {
			return "", "", fmt.Errorf("invalid remote URL %q: %w", raw, err)
		}
		remotePath = u.Path
	case isSCPLike(remotePath):
		remotePath = remotePath[strings.Index(remotePath, ":")+1:]
	default:
		remotePath = filepath.ToSlash(remotePath)
	}
	remotePath = strings.TrimSuffix(strings.Trim(remotePath, "/"), ".git")
	parts := strings.Split(remotePath, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("cannot determine owner and repository from %q", raw)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// isSCPLike reports "user@host:path" style addresses.
func isSCPLike(s string) bool {
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return false
	}
	slash := strings.Index(s, "/")
	return slash == -1 || colon < slash
}
