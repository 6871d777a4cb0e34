package cmd

import (
	"github.com/compozy/prflow/internal/config"
	"github.com/compozy/prflow/internal/orchestrator"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the prflow command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var (
		noCleanup   bool
		saveSession bool
	)
	cmd := &cobra.Command{
		Use:   "prflow",
		Short: "Open a pull request with a new file from the terminal",
		Long: `prflow walks through a pull request interactively:
it lists your repositories, creates a branch at the default branch head,
commits a file you type in and opens a pull request back into the default branch.

When a step fails after the branch was created the branch is deleted again,
unless --no-cleanup is given. With --save-session the session journal is kept
so "prflow rollback" can undo the branch and pull request later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(opts, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer c.close()
			orch := orchestrator.NewBranchPROrchestrator(c.githubRepo, c.stateRepo, c.remoteRepo, c.console, c.log)
			return orch.Execute(cmd.Context(), orchestrator.WorkflowConfig{
				Cleanup:     !noCleanup,
				SaveSession: saveSession,
			})
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to the JSON configuration file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log API calls and internal steps to stderr")
	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "Keep the new branch when a later step fails")
	cmd.Flags().BoolVar(&saveSession, "save-session", false, "Save the session journal for a later rollback")
	cmd.AddCommand(newRollbackCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}
