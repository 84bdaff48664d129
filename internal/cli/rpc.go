package cli

import (
	"github.com/spf13/cobra"

	"todocal/internal/rpc"
)

// NewRPCCommand creates the rpc command.
func NewRPCCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc",
		Short: "Serve JSON-RPC 2.0 on stdin/stdout",
		Long: `Serve the store to an agent as newline-delimited JSON-RPC 2.0 on
stdin and stdout. Logs go to stderr.

Methods: list_tasks, add_task, update_task, delete_task, list_projects,
add_project_entry.

Do not point rpc and serve at the same data directory at the same time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Signals keep their default behavior: every mutation is
			// already durable, so exiting mid-read loses nothing.
			ctx := commandContext(cmd)

			s, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			return rpc.NewServer(s, logger).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
