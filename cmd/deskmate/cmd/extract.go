package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/OpenDeskLab/DeskMate/internal/config"
	"github.com/OpenDeskLab/DeskMate/internal/gamelog"
	"github.com/OpenDeskLab/DeskMate/internal/recordurl"
)

var (
	extractProfile string
	extractPath    string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the freshest exchange-record URL without launching the GUI",
	Long: `Locate the game client's data directory (player log scan, then the
Windows registry) and print the newest authenticated exchange-record
URL found in its web cache. Open the in-game record page first so the
client writes a fresh URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, ok := gamelog.ProfileByName(extractProfile)
		if !ok {
			return fmt.Errorf("unknown profile %q (known: %s)", extractProfile, profileNames())
		}

		scanner, err := gamelog.NewScanner(profile)
		if err != nil {
			return err
		}
		if verbose {
			scanner.SetLogf(log.Printf)
		}

		override := extractPath
		if override == "" {
			if cfg, err := openStore(); err == nil {
				override, _ = cfg.Get("exchange.game_path")
			}
		}

		dataDir, err := scanner.FindDataDir(override)
		if err != nil {
			return err
		}
		if verbose {
			log.Printf("data directory: %s", dataDir)
		}

		rec, err := recordurl.Extract(dataDir, profile.APIMarker)
		if err != nil {
			return err
		}
		if verbose {
			log.Printf("cache file: %s (modified %s)", rec.CacheFile, rec.CachedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println(rec.URL)
		return nil
	},
}

func profileNames() string {
	names := ""
	for i, p := range gamelog.Profiles() {
		if i > 0 {
			names += ", "
		}
		names += p.Name
	}
	return names
}

// openStore opens the settings store named by --config, falling back to
// the per-user default location.
func openStore() (*config.Store, error) {
	if configPath != "" {
		return config.Open(configPath)
	}
	return config.OpenDefault()
}

func init() {
	extractCmd.Flags().StringVarP(&extractProfile, "profile", "p", "global", "client profile (global, cn)")
	extractCmd.Flags().StringVar(&extractPath, "path", "", "installation or data directory override")
	rootCmd.AddCommand(extractCmd)
}
