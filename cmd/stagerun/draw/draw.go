package draw

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-stage/cmd/stagerun/common"
	"github.com/askiada/go-stage/internal/demo"
	"github.com/askiada/go-stage/pkg/pipeline/drawer"
	"github.com/askiada/go-stage/pkg/pipeline/measure"
)

// NewCmd creates the `stagerun draw` command.
func NewCmd() *cobra.Command {
	var (
		flags  common.Flags
		output string
	)

	cmd := &cobra.Command{
		Use:           "draw <demo>",
		Short:         "Run a demo pipeline and write its measured graph in DOT format",
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     demo.Names(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := flags.Load(cmd)
			if err != nil {
				return err
			}

			logger, closeLogger, err := common.InitLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLogger()

			var out io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, createErr := os.Create(output)
				if createErr != nil {
					return errors.Wrapf(createErr, "unable to create %s", output)
				}
				defer func() {
					closeErr := f.Close()
					if err == nil && closeErr != nil {
						err = errors.Wrapf(closeErr, "unable to close %s", output)
					}
				}()
				out = f
			}

			msr := measure.NewDefaultMeasure()

			pipe, err := demo.Build(cmd.Context(), args[0], cfg, logger,
				measure.PipelineMeasure(msr),
				drawer.PipelineDrawer(drawer.NewDOTDrawer(out), msr),
			)
			if err != nil {
				return err
			}

			err = pipe.Run()
			if err != nil {
				return err
			}

			logger.Info("graph written", "output", output)

			return nil
		},
	}

	flags.Bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "DOT file to write, - for stdout")

	return cmd
}
