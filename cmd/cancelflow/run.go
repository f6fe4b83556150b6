package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow/internal/cli"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cancellation flow interactively",
		Long: `Starts (or resumes) a session and walks through the flow on the terminal.
Progress is saved after every answer, so an interrupted session continues
where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if fresh, _ := flags.GetBool("new"); fresh {
				cfg.Session = uuid.NewString()
			}
			if flags.Changed("metrics-addr") {
				cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
			}
			if flags.Changed("analytics") {
				cfg.Analytics.Path, _ = flags.GetString("analytics")
			}

			opts := cli.RunOptions{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			opts.JSON, _ = flags.GetBool("json")
			opts.Headless, _ = flags.GetBool("headless")
			opts.Fresh, _ = flags.GetBool("fresh")

			return cli.RunSession(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().Bool("headless", false, "Plain output without banner or markdown rendering")
	cmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	cmd.Flags().Bool("fresh", false, "Discard the saved session and start over")
	cmd.Flags().Bool("new", false, "Start a session under a new random id")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112)")
	cmd.Flags().String("analytics", "", "Record analytics events in this SQLite database")
	return cmd
}
