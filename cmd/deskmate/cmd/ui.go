package cmd

import (
	"github.com/spf13/cobra"

	appui "github.com/OpenDeskLab/DeskMate/internal/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the DeskMate shell",
	Long: `Launch the graphical shell: custom title bar, collapsible sidebar,
and the pomodoro / exchange-record / clipboard panels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := openStore()
		if err != nil {
			return err
		}
		return appui.Run(cfg, Version)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
