package domain

import "fmt"

// Session identifies the account an authenticated API handle acts as.
type Session struct {
	Login string
}

// RepositoryRef is a repository returned by the listing call.
type RepositoryRef struct {
	ID            int64
	Owner         string
	Name          string
	FullName      string
	DefaultBranch string
}

// Slug returns "owner/name".
func (r RepositoryRef) Slug() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner + "/" + r.Name
}

// FileSubmission is the single file committed to the new branch.
type FileSubmission struct {
	Path    string
	Content string
}

// PullRequestSpec holds everything needed to open a pull request.
type PullRequestSpec struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// PullRequest is a pull request created on the remote.
type PullRequest struct {
	Number  int
	HTMLURL string
}

// BranchRef returns the fully qualified ref for a branch name.
func BranchRef(branch string) string {
	return fmt.Sprintf("refs/heads/%s", branch)
}
