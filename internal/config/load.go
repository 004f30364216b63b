package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/x/exp/slice"
	"github.com/qjebbs/go-jsons"
)

var instance atomic.Pointer[Config]

// Init loads the configuration for workingDir and makes it available
// through Get.
func Init(workingDir string, debug bool) (*Config, error) {
	cfg, err := Load(workingDir, debug)
	if err != nil {
		return nil, err
	}
	instance.Store(cfg)
	return cfg, nil
}

// Get returns the configuration loaded by Init.
func Get() *Config {
	return instance.Load()
}

// Load reads the global config, the global data config written by
// SetConfigField and the project config files of workingDir, in that order.
// Later files override earlier ones.
func Load(workingDir string, debug bool) (*Config, error) {
	paths := configPaths(workingDir)
	cfg, err := loadFromConfigPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.dataConfigDir = GlobalConfigData()
	cfg.setDefaults(workingDir)
	if debug {
		cfg.Options.Debug = true
	}
	slog.Debug("Loaded config", "working_dir", cfg.workingDir, "files", len(paths))
	return cfg, nil
}

// configPaths lists the files Load reads, lowest priority first. A file named
// twice (the global and data config pointed at the same path) is read once.
func configPaths(workingDir string) []string {
	return slice.Uniq(append([]string{GlobalConfig(), GlobalConfigData()}, projectConfigs(workingDir)...))
}

func projectConfigs(workingDir string) []string {
	return []string{
		filepath.Join(workingDir, appName+".json"),
		filepath.Join(workingDir, "."+appName+".json"),
	}
}

func loadFromConfigPaths(configPaths []string) (*Config, error) {
	var configs []io.Reader

	for _, path := range configPaths {
		fd, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer fd.Close()

		configs = append(configs, fd)
	}

	return loadFromReaders(configs)
}

func loadFromReaders(readers []io.Reader) (*Config, error) {
	if len(readers) == 0 {
		return &Config{}, nil
	}

	merged, err := jsons.Merge(readers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge configuration readers: %w", err)
	}

	return LoadReader(bytes.NewReader(merged))
}

// LoadReader decodes a single JSON config document.
func LoadReader(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults(workingDir string) {
	c.workingDir = workingDir
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.List == nil {
		c.List = &ListOptions{}
	}
	if c.Sources == nil {
		c.Sources = &Sources{}
	}

	if c.Options.DataDirectory == "" {
		c.Options.DataDirectory = filepath.Join(workingDir, defaultDataDirectory)
	} else if !filepath.IsAbs(c.Options.DataDirectory) {
		c.Options.DataDirectory = filepath.Join(workingDir, c.Options.DataDirectory)
	}

	if c.List.EstimatedHeight <= 0 {
		c.List.EstimatedHeight = defaultEstimatedHeight
	}
	c.List.ScrollStateCapacity = max(0, c.List.ScrollStateCapacity)

	if c.Sources.Repo == "" {
		c.Sources.Repo = workingDir
	} else if !filepath.IsAbs(c.Sources.Repo) {
		c.Sources.Repo = filepath.Join(workingDir, c.Sources.Repo)
	}
	if c.Sources.Feed == "" {
		c.Sources.Feed = filepath.Join(c.Options.DataDirectory, defaultFeedFile)
	} else if !filepath.IsAbs(c.Sources.Feed) {
		c.Sources.Feed = filepath.Join(workingDir, c.Sources.Feed)
	}
	if c.Sources.CommitLimit <= 0 {
		c.Sources.CommitLimit = defaultCommitLimit
	}
	if c.Sources.FeedMaxRecords <= 0 {
		c.Sources.FeedMaxRecords = defaultFeedMaxRecords
	}
}

// GlobalConfig returns the path to the main config file for the user.
func GlobalConfig() string {
	if path := os.Getenv("TOWNVIEW_GLOBAL_CONFIG"); path != "" {
		return path
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".json")
	}
	return filepath.Join(homeDir(), ".config", appName, appName+".json")
}

// GlobalConfigData returns the path to the config file the application
// writes to, kept apart from the file the user edits.
func GlobalConfigData() string {
	if path := os.Getenv("TOWNVIEW_GLOBAL_DATA"); path != "" {
		return path
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".json")
	}
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, appName+".json")
	}
	return filepath.Join(homeDir(), ".local", "share", appName, appName+".json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
