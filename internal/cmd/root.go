package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/JeremyKalmus/town-view-sub001/internal/config"
	"github.com/JeremyKalmus/town-view-sub001/internal/log"
	"github.com/JeremyKalmus/town-view-sub001/internal/notification"
	"github.com/JeremyKalmus/town-view-sub001/internal/scrollstate"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui"
	"github.com/JeremyKalmus/town-view-sub001/internal/version"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().String("repo", "", "Git repository for the commits tab")
	rootCmd.Flags().String("feed", "", "JSONL activity file for the feed tab")
	rootCmd.Flags().String("old", "", "Old file to diff in the diff tab")
	rootCmd.Flags().String("new", "", "New file to diff in the diff tab")
	rootCmd.Flags().Bool("poll", false, "Poll the feed file instead of watching it")
}

var rootCmd = &cobra.Command{
	Use:   "townview",
	Short: "Terminal dashboard for a town of agents",
	Long: heredoc.Doc(`
		Townview follows an agent activity feed, browses the commit history of
		a repository and shows diffs. Every tab is a virtualized list, so
		feeds and histories of any length scroll without delay.
	`),
	Example: heredoc.Doc(`
		# Run in the current directory
		townview

		# Follow a specific feed and repository
		townview --feed ~/town/feed.jsonl --repo ~/town/rig

		# Compare two files
		townview --old before.go --new after.go

		# Run with debug logging
		townview -d
	`),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTerminal(os.Stdout); err != nil {
			return err
		}
		cfg, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer log.RecoverPanic("townview", nil)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		store := scrollstate.New(cfg.List.ScrollStateCapacity)
		scrollstate.SetDefault(store)

		poll, _ := cmd.Flags().GetBool("poll")
		records, err := feed.Follow(ctx, cfg.Sources.Feed, feed.Options{
			MaxRecords: cfg.Sources.FeedMaxRecords,
			Poll:       poll,
			Follow:     true,
		})
		if err != nil {
			slog.Warn("Feed unavailable", "path", cfg.Sources.Feed, "error", err)
			records = nil
		}

		oldFile, _ := cmd.Flags().GetString("old")
		newFile, _ := cmd.Flags().GetString("new")
		if (oldFile == "") != (newFile == "") {
			return fmt.Errorf("--old and --new must be used together")
		}

		model := tui.New(ctx, tui.Options{
			Config:   cfg,
			Store:    store,
			Feed:     records,
			Notifier: notification.New(cfg.Options.Notify),
			OldFile:  oldFile,
			NewFile:  newFile,
		})
		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		}
		if !cfg.List.DisableMouse {
			opts = append(opts, tea.WithMouseCellMotion())
		}
		program := tea.NewProgram(model, opts...)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("townview crashed: %w", err)
		}
		return nil
	},
}

// requireTerminal fails when f is not a terminal, since the dashboard would
// only write escape sequences into a pipe or file.
func requireTerminal(f *os.File) error {
	if !term.IsTerminal(f.Fd()) {
		return fmt.Errorf("townview needs a terminal; use \"townview feed list\" for plain output")
	}
	return nil
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
	); err != nil {
		os.Exit(1)
	}
}

// setupApp loads the configuration, applies the command line overrides and
// starts logging.
func setupApp(cmd *cobra.Command) (*config.Config, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	cwd, err := resolveCwd(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Init(cwd, debug)
	if err != nil {
		return nil, err
	}

	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		cfg.Sources.Repo = absFrom(cwd, repo)
	}
	if path, _ := cmd.Flags().GetString("feed"); path != "" {
		cfg.Sources.Feed = absFrom(cwd, path)
	}

	if err := os.MkdirAll(cfg.Options.DataDirectory, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %q %w", cfg.Options.DataDirectory, err)
	}
	log.Setup(cfg.DataPath("logs", "townview.log"), cfg.Options.Debug)
	slog.Info("Starting townview", "version", version.Version, "cwd", cwd)
	return cfg, nil
}

func resolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		if err := os.Chdir(cwd); err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}

func absFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
