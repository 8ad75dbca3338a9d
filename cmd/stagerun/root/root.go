package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/askiada/go-stage/cmd/stagerun/draw"
	"github.com/askiada/go-stage/cmd/stagerun/run"
	"github.com/askiada/go-stage/cmd/stagerun/version"
)

// NewRootCmd creates the root command for stagerun.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stagerun",
		Short: "Run stage pipelines connected by closable byte channels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(draw.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)

	return cmd.ExecuteContext(ctx)
}
