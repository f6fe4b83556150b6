package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow/internal/cli"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded analytics events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("analytics") {
				cfg.Analytics.Path, _ = flags.GetString("analytics")
			}
			only := ""
			if flags.Changed("session") {
				only = cfg.Session
			}

			summary, err := cli.Stats(cmd.Context(), cfg, only)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := flags.GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Fprintf(out, "Events:           %d\n", summary.TotalEvents)
			fmt.Fprintf(out, "Step views:       %d\n", summary.StepViews)
			fmt.Fprintf(out, "Selections:       %d\n", summary.OptionSelections)
			fmt.Fprintf(out, "Completions:      %d\n", summary.Completions)
			fmt.Fprintf(out, "Resets:           %d\n", summary.Resets)
			fmt.Fprintf(out, "Completion rate:  %d%%\n", summary.CompletionRate)
			fmt.Fprintf(out, "Avg session:      %s\n", summary.AvgSessionDuration)
			if len(summary.TopOptions) > 0 {
				fmt.Fprintln(out, "Top options:")
				for _, o := range summary.TopOptions {
					fmt.Fprintf(out, "  %4d  %s\n", o.Count, o.Option)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("analytics", "", "SQLite database with analytics events")
	cmd.Flags().Bool("json", false, "Print the summary as JSON")
	return cmd
}
