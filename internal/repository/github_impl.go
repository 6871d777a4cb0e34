package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/compozy/prflow/internal/domain"
	"github.com/google/go-github/v74/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var ErrGithubTokenRequired = errors.New("github token is required for GitHub operations")

const listPageSize = 100

// githubRepository is the implementation of the GithubExtendedRepository interface.
type githubRepository struct {
	client      *github.Client
	affiliation string
	log         *zap.Logger
}

type githubOptions struct {
	baseURL     string
	userAgent   string
	affiliation string
	log         *zap.Logger
}

// GithubOption configures NewGithubRepository.
type GithubOption func(*githubOptions)

// WithBaseURL points the client at a GitHub Enterprise REST endpoint.
func WithBaseURL(baseURL string) GithubOption {
	return func(o *githubOptions) { o.baseURL = baseURL }
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) GithubOption {
	return func(o *githubOptions) { o.userAgent = ua }
}

// WithAffiliation sets the affiliation filter used when listing repositories.
func WithAffiliation(affiliation string) GithubOption {
	return func(o *githubOptions) { o.affiliation = affiliation }
}

// WithLogger sets the logger used for API call diagnostics.
func WithLogger(log *zap.Logger) GithubOption {
	return func(o *githubOptions) { o.log = log }
}

// NewGithubRepository creates an authenticated GitHub API handle.
func NewGithubRepository(token string, opts ...GithubOption) (GithubExtendedRepository, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrGithubTokenRequired
	}
	o := &githubOptions{affiliation: "owner", log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	// Create OAuth2 client with the token
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)
	if o.baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(o.baseURL, o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL %q: %w", o.baseURL, err)
		}
	}
	if o.userAgent != "" {
		client.UserAgent = o.userAgent
	}
	return &githubRepository{
		client:      client,
		affiliation: o.affiliation,
		log:         o.log,
	}, nil
}

// AuthenticatedUser fetches the identity behind the token.
func (r *githubRepository) AuthenticatedUser(ctx context.Context) (string, error) {
	r.log.Debug("authenticating")
	user, _, err := r.client.Users.Get(ctx, "")
	if err != nil {
		return "", remoteError("authenticate", err)
	}
	return user.GetLogin(), nil
}

// ListRepositories returns every repository matching the affiliation filter, following pagination.
func (r *githubRepository) ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: r.affiliation,
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	var refs []domain.RepositoryRef
	for {
		r.log.Debug("listing repositories", zap.String("affiliation", r.affiliation), zap.Int("page", opts.Page))
		repos, resp, err := r.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, remoteError("list repositories", err)
		}
		for _, repo := range repos {
			refs = append(refs, domain.RepositoryRef{
				ID:            repo.GetID(),
				Owner:         repo.GetOwner().GetLogin(),
				Name:          repo.GetName(),
				FullName:      repo.GetFullName(),
				DefaultBranch: repo.GetDefaultBranch(),
			})
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListBranches returns the names of all branches of repo.
func (r *githubRepository) ListBranches(ctx context.Context, repo domain.RepositoryRef) ([]string, error) {
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}
	var names []string
	for {
		r.debug("listing branches", repo, zap.Int("page", opts.Page))
		branches, resp, err := r.client.Repositories.ListBranches(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, remoteError(fmt.Sprintf("list branches of %s", repo.Slug()), err)
		}
		for _, b := range branches {
			names = append(names, b.GetName())
		}
		if resp.NextPage == 0 {
			return names, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetDefaultBranch fetches the repository and returns its default branch name.
func (r *githubRepository) GetDefaultBranch(ctx context.Context, repo domain.RepositoryRef) (string, error) {
	r.debug("fetching repository", repo)
	got, _, err := r.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", remoteError(fmt.Sprintf("get repository %s", repo.Slug()), err)
	}
	if got.GetDefaultBranch() == "" {
		return "", fmt.Errorf("%w: repository %s has no default branch", domain.ErrRemoteCall, repo.Slug())
	}
	return got.GetDefaultBranch(), nil
}

// GetBranchSHA returns the head commit SHA of branch.
func (r *githubRepository) GetBranchSHA(ctx context.Context, repo domain.RepositoryRef, branch string) (string, error) {
	r.debug("fetching branch", repo, zap.String("branch", branch))
	b, _, err := r.client.Repositories.GetBranch(ctx, repo.Owner, repo.Name, branch, 1)
	if err != nil {
		return "", remoteError(fmt.Sprintf("get branch %s", branch), err)
	}
	sha := b.GetCommit().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("%w: branch %s has no head commit", domain.ErrRemoteCall, branch)
	}
	return sha, nil
}

// CreateRef creates ref pointing at sha.
func (r *githubRepository) CreateRef(ctx context.Context, repo domain.RepositoryRef, ref, sha string) error {
	r.debug("creating ref", repo, zap.String("ref", ref), zap.String("sha", sha))
	_, _, err := r.client.Git.CreateRef(ctx, repo.Owner, repo.Name, &github.Reference{
		Ref:    github.Ptr(ref),
		Object: &github.GitObject{SHA: github.Ptr(sha)},
	})
	if err != nil {
		return remoteError(fmt.Sprintf("create ref %s", ref), err)
	}
	return nil
}

// CreateFile commits a new file through the contents API.
func (r *githubRepository) CreateFile(
	ctx context.Context,
	repo domain.RepositoryRef,
	file domain.FileSubmission,
	message, branch string,
) (string, error) {
	r.debug("creating file", repo, zap.String("path", file.Path), zap.String("branch", branch))
	res, _, err := r.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, file.Path,
		&github.RepositoryContentFileOptions{
			Message: github.Ptr(message),
			Content: []byte(file.Content),
			Branch:  github.Ptr(branch),
		})
	if err != nil {
		return "", remoteError(fmt.Sprintf("create file %s", file.Path), err)
	}
	if res == nil {
		return "", nil
	}
	return res.Commit.GetSHA(), nil
}

// CreatePullRequest opens a pull request from head into base.
func (r *githubRepository) CreatePullRequest(
	ctx context.Context,
	repo domain.RepositoryRef,
	title, head, base, body string,
) (*domain.PullRequest, error) {
	r.debug("creating pull request", repo, zap.String("head", head), zap.String("base", base))
	pr, _, err := r.client.PullRequests.Create(ctx, repo.Owner, repo.Name, &github.NewPullRequest{
		Title: &title,
		Head:  &head,
		Base:  &base,
		Body:  &body,
	})
	if err != nil {
		return nil, remoteError("create pull request", err)
	}
	return &domain.PullRequest{Number: pr.GetNumber(), HTMLURL: pr.GetHTMLURL()}, nil
}

// DeleteRef deletes ref, treating an already missing ref as success.
func (r *githubRepository) DeleteRef(ctx context.Context, repo domain.RepositoryRef, ref string) error {
	r.debug("deleting ref", repo, zap.String("ref", ref))
	resp, err := r.client.Git.DeleteRef(ctx, repo.Owner, repo.Name, ref)
	if err != nil {
		// GitHub answers 422 "Reference does not exist" for refs that are already gone
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity) {
			return nil
		}
		return remoteError(fmt.Sprintf("delete ref %s", ref), err)
	}
	return nil
}

// ClosePullRequest closes a pull request
func (r *githubRepository) ClosePullRequest(ctx context.Context, repo domain.RepositoryRef, number int) error {
	r.debug("closing pull request", repo, zap.Int("number", number))
	_, _, err := r.client.PullRequests.Edit(ctx, repo.Owner, repo.Name, number, &github.PullRequest{
		State: github.Ptr("closed"),
	})
	if err != nil {
		return remoteError(fmt.Sprintf("close PR #%d", number), err)
	}
	return nil
}

// GetPRStatus returns the status of a pull request (open, closed, merged)
func (r *githubRepository) GetPRStatus(ctx context.Context, repo domain.RepositoryRef, number int) (string, error) {
	pr, _, err := r.client.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return "", remoteError(fmt.Sprintf("get PR #%d", number), err)
	}
	if pr.GetMerged() {
		return "merged", nil
	}
	return pr.GetState(), nil
}

func (r *githubRepository) debug(msg string, repo domain.RepositoryRef, fields ...zap.Field) {
	r.log.Debug(msg, append([]zap.Field{zap.String("owner", repo.Owner), zap.String("repo", repo.Name)}, fields...)...)
}

// remoteError tags err with the error kind the entry point reports.
func remoteError(action string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: failed to %s: %w", domain.ErrAuthentication, action, err)
	}
	return fmt.Errorf("%w: failed to %s: %w", domain.ErrRemoteCall, action, err)
}
