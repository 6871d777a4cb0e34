package cmd

import (
	"github.com/compozy/prflow/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newRollbackCmd(opts *rootOptions) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Undo the branch and pull request of a saved session",
		Long: `Undo a session saved with --save-session.

Completed operations are undone newest first: the pull request is closed
and the branch created by the session is deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(opts, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer c.close()
			orch := orchestrator.NewRollbackOrchestrator(c.githubRepo, c.stateRepo, c.console, c.log)
			return orch.Execute(cmd.Context(), sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session ID to roll back (uses latest if not specified)")
	return cmd
}
