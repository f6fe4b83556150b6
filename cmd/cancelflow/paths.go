package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow/internal/cli"
	"github.com/aretw0/cancelflow/internal/validator"
)

func newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "List every answer path from the initial step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, _, err := cli.LoadRegistry(cfg.Flow)
			if err != nil {
				return err
			}

			finals := map[string]int{}
			paths := validator.Paths(reg)
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p.String())
				finals[p.Final()]++
			}

			if summary, _ := cmd.Flags().GetBool("summary"); summary {
				fmt.Fprintf(out, "\n%d paths\n", len(paths))
				for _, id := range reg.IDs() {
					if n := finals[id]; n > 0 {
						fmt.Fprintf(out, "  %s: %d\n", id, n)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("summary", false, "Print how many paths end on each step")
	return cmd
}
