package main

import (
	"fmt"
	"os"

	"github.com/fentz26/n3dash/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "n3dash",
	Short: "n3dash - N3 project dashboard CLI",
	Long:  `n3dash is a terminal client for the N3 collaboration platform. It tracks projects, tasks and subtasks from the command line or an interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// config init must work even when the existing file is broken
		if cmd == configInitCmd {
			return nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if apiAddr != "" {
			cfg.API.BaseURL = apiAddr
		}
		appCfg = cfg
		return nil
	},
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

// version is set at build time via -ldflags.
var version = "0.1.0-dev"

var (
	apiAddr    string
	configPath string
	appCfg     *config.Config
)

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "API server address (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.n3dash/config.yaml)")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(dashboardCmd, departmentsCmd, healthCmd)
	rootCmd.AddCommand(projectCmd, taskCmd, subtaskCmd)
	rootCmd.AddCommand(tuiCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
