package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/JeremyKalmus/town-view-sub001/internal/config"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print directories used by townview",
	Long: `Print the directories where townview reads its configuration and keeps
its data, including the project data directory with the logs and default feed.`,
	Example: heredoc.Doc(`
		# Print all directories
		townview dirs

		# Print only the config directory
		townview dirs --config

		# Print only the data directory
		townview dirs --data
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		configOnly, _ := cmd.Flags().GetBool("config")
		dataOnly, _ := cmd.Flags().GetBool("data")

		if configOnly && dataOnly {
			return fmt.Errorf("cannot specify both --config and --data flags")
		}

		out := cmd.OutOrStdout()
		configDir := filepath.Dir(config.GlobalConfig())
		dataDir := filepath.Dir(config.GlobalConfigData())

		if configOnly {
			fmt.Fprintln(out, configDir)
			return nil
		}
		if dataOnly {
			fmt.Fprintln(out, dataDir)
			return nil
		}

		cwd, err := resolveCwd(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd, false)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Config directory:  %s\n", configDir)
		fmt.Fprintf(out, "Data directory:    %s\n", dataDir)
		fmt.Fprintf(out, "Project directory: %s\n", cfg.Options.DataDirectory)
		fmt.Fprintf(out, "Feed:              %s\n", cfg.Sources.Feed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().Bool("config", false, "Print only the config directory")
	dirsCmd.Flags().Bool("data", false, "Print only the data directory")
}
