package run

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/askiada/go-stage/cmd/stagerun/common"
	"github.com/askiada/go-stage/internal/config"
	"github.com/askiada/go-stage/internal/demo"
	"github.com/askiada/go-stage/pkg/pipeline/measure"
	"github.com/askiada/go-stage/pkg/pipeline/model"
)

// NewCmd creates the `stagerun run` command.
func NewCmd() *cobra.Command {
	var (
		flags      common.Flags
		withMetric bool
	)

	cmd := &cobra.Command{
		Use:           "run <demo>",
		Short:         "Run a demo pipeline and log what reaches its reporter",
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     demo.Names(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Load(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("measure") {
				cfg.Pipeline.Measure = withMetric
			}

			logger, closeLogger, err := common.InitLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLogger()

			return runDemo(cmd, args[0], cfg, logger)
		},
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&withMetric, "measure", false, "Log the time every stage waited on its channels")

	return cmd
}

func runDemo(cmd *cobra.Command, name string, cfg config.Config, logger *slog.Logger) error {
	var (
		msr  *measure.DefaultMeasure
		opts []model.PipelineOption
	)

	if cfg.Pipeline.Measure {
		msr = measure.NewDefaultMeasure()
		opts = append(opts, measure.PipelineMeasure(msr))
	}

	pipe, err := demo.Build(cmd.Context(), name, cfg, logger, opts...)
	if err != nil {
		return err
	}

	err = pipe.Run()
	if err != nil {
		return err
	}

	if msr != nil {
		Report(logger, msr)
	}

	return nil
}

// Report logs the metrics of every stage.
func Report(logger *slog.Logger, msr measure.Measure) {
	metrics := msr.AllMetrics()

	for _, name := range slices.Sorted(maps.Keys(metrics)) {
		mt := metrics[name]

		attrs := []any{"stage", name, "push_wait", mt.AVGDuration(), "total", mt.GetTotalDuration()}
		for input, info := range mt.AVGTransportDuration() {
			attrs = append(attrs, slog.Group("from_"+input, "read_wait", info.Elapsed, "messages", info.Total))
		}

		logger.Info("stage metrics", attrs...)
	}
}
