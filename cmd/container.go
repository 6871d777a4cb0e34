package cmd

import (
	"io"

	"github.com/compozy/prflow/internal/config"
	"github.com/compozy/prflow/internal/console"
	"github.com/compozy/prflow/internal/logger"
	"github.com/compozy/prflow/internal/repository"
	"github.com/compozy/prflow/pkg/version"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config
	log *zap.Logger

	fsRepo     repository.FileSystemRepository
	githubRepo repository.GithubExtendedRepository
	stateRepo  repository.StateRepository
	remoteRepo repository.LocalRemoteRepository
	console    console.Console
}

// newContainer loads the configuration and wires every dependency.
// It does not talk to the API; the first remote call is the session handshake.
func newContainer(opts *rootOptions, in io.Reader, out io.Writer) (*container, error) {
	fsRepo := repository.NewOSFileSystem()
	cfg, err := config.Load(fsRepo, opts.configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(opts.verbose)
	if err != nil {
		return nil, err
	}
	githubOpts := []repository.GithubOption{
		repository.WithUserAgent(version.UserAgent()),
		repository.WithAffiliation(cfg.Affiliation),
		repository.WithLogger(log),
	}
	if cfg.APIBaseURL != "" {
		githubOpts = append(githubOpts, repository.WithBaseURL(cfg.APIBaseURL))
	}
	githubRepo, err := repository.NewGithubRepository(cfg.GithubToken, githubOpts...)
	if err != nil {
		return nil, err
	}
	return &container{
		cfg:        cfg,
		log:        log,
		fsRepo:     fsRepo,
		githubRepo: githubRepo,
		stateRepo:  repository.NewJSONStateRepository(fsRepo, cfg.StateDir, log),
		remoteRepo: repository.NewLocalRemoteRepository("."),
		console:    console.New(in, out),
	}, nil
}

func (c *container) close() {
	// Sync on a terminal stderr reports EINVAL; nothing useful can be done with it
	_ = c.log.Sync()
}
