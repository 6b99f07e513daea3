package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build (-ldflags "-X ...cmd.Version=").
var Version = "0.9.0"

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "deskmate",
	Short: "DeskMate - desktop companion with pomodoro, record extraction and clipboard tools",
	Long: `DeskMate is a desktop companion application: a pomodoro timer,
a gacha exchange-record URL extractor, and a clipboard history manager
behind a custom window shell.

Examples:
  deskmate ui                         # Launch the GUI shell
  deskmate extract                    # Print the freshest record URL
  deskmate extract --profile cn       # Use the CN client profile`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: per-user config dir)")
}
