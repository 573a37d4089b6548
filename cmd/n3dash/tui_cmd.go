package main

import (
	"github.com/fentz26/n3dash/internal/notify"
	"github.com/fentz26/n3dash/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	center := notify.NewCenter(appCfg.Toast.Duration)
	defer center.Close()

	a, err := openApp(cmd.Context(), center)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.New(cmd.Context(), a.dash, center).Run()
}
