package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow"
	"github.com/aretw0/cancelflow/internal/cli"
)

var errInvalidFlow = errors.New("flow is invalid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the flow for dead ends and unreachable steps",
		Long: `Walks the flow from its initial step trying every option, and reports
transitions to undefined steps as errors. Unreachable steps and mismatches with
the progress order are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, name, err := cli.LoadRegistry(cfg.Flow)
			if err != nil {
				return err
			}

			report := cancelflow.Validate(reg)
			out := cmd.OutOrStdout()
			for _, msg := range report.Errors {
				fmt.Fprintf(out, "error: %s\n", msg)
			}
			for _, msg := range report.Warnings {
				fmt.Fprintf(out, "warning: %s\n", msg)
			}
			if !report.Valid {
				return fmt.Errorf("%s: %w (%d errors)", name, errInvalidFlow, len(report.Errors))
			}
			fmt.Fprintf(out, "Flow %s is valid! ✅ (%d reachable steps)\n", name, len(report.Reachable))
			return nil
		},
	}
}
