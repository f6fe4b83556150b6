package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow/internal/cli"
	"github.com/aretw0/cancelflow/internal/presentation/graph"
	"github.com/aretw0/cancelflow/pkg/persistence"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the flow graph visualization",
		Long:  `Outputs a Mermaid diagram (graph TD) of the flow. With --state the stored session is highlighted.`,
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

			var overlay *graph.GraphOverlay
			if withState, _ := cmd.Flags().GetBool("state"); withState {
				dbs := cli.NewDatabases()
				defer dbs.Close()
				store, release, err := cli.OpenStore(cmd.Context(), cfg, dbs)
				if err != nil {
					return err
				}
				defer release()

				state, _ := persistence.New(store, reg, persistence.WithKey(cfg.Session)).Restore(cmd.Context())
				overlay = graph.OverlayFromState(reg, state)
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(reg, overlay))
			return nil
		},
	}
	cmd.Flags().Bool("state", false, "Highlight the visited and current steps of the session")
	return cmd
}
