package main

import (
	"fmt"
	"os"

	"github.com/fentz26/n3dash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var configForce bool

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(appCfg)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if apiAddr != "" {
		cfg.API.BaseURL = apiAddr
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
