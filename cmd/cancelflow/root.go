package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/cancelflow/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cancelflow",
		Short: "cancelflow runs and checks subscription cancellation flows",
		Long: `cancelflow drives a cancellation wizard step by step, persists the session,
and validates that every path through the flow ends on a final step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ./cancelflow.yaml)")
	pf.StringSlice("env-file", []string{".env"}, "Env files loaded before reading the environment")
	pf.String("flow", "", "Built-in flow name (cancel, retention)")
	pf.String("flow-file", "", "Flow definition file (YAML or JSON)")
	pf.String("store", "", "Session store: memory, file, sqlite or redis")
	pf.String("store-path", "", "Directory (file) or database path (sqlite)")
	pf.String("session", "", "Session id used as the persistence key")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCmd(),
		newGraphCmd(),
		newPathsCmd(),
		newRunCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configuration and applies explicit flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	file, _ := flags.GetString("config")
	envFiles, _ := flags.GetStringSlice("env-file")

	cfg, err := config.Load(config.Options{File: file, EnvFiles: envFiles})
	if err != nil {
		return nil, err
	}

	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("flow", &cfg.Flow.Name)
	override("flow-file", &cfg.Flow.File)
	override("store", &cfg.Store.Type)
	override("store-path", &cfg.Store.Path)
	override("session", &cfg.Session)
	override("log-level", &cfg.Log.Level)

	if flags.Changed("flow") && !flags.Changed("flow-file") {
		cfg.Flow.File = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
