package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/sjson"
)

const (
	appName              = "townview"
	defaultDataDirectory = ".townview"
	defaultFeedFile      = "feed.jsonl"

	defaultEstimatedHeight = 3
	defaultCommitLimit     = 500
	defaultFeedMaxRecords  = 5000
)

type Options struct {
	Debug bool `json:"debug,omitempty" jsonschema:"description=Enable debug logging,default=false"`
	// Relative to the working directory.
	DataDirectory string `json:"data_directory,omitempty" jsonschema:"description=Directory for logs and local state,default=.townview"`
	Notify        bool   `json:"notify,omitempty" jsonschema:"description=Send a desktop notification when new mail arrives in the feed,default=false"`
}

type ListOptions struct {
	// Nil means the engine default.
	Overscan        *int `json:"overscan,omitempty" jsonschema:"description=Items rendered beyond each edge of the viewport,default=3,minimum=0"`
	EstimatedHeight int  `json:"estimated_height,omitempty" jsonschema:"description=Initial height in lines of feed items before they are measured,default=3,minimum=1"`
	// Zero keeps every list's scroll position for the whole session.
	ScrollStateCapacity int  `json:"scroll_state_capacity,omitempty" jsonschema:"description=Maximum number of remembered scroll positions (0 for unbounded),default=0,minimum=0"`
	DisableMouse        bool `json:"disable_mouse,omitempty" jsonschema:"description=Disable mouse wheel scrolling,default=false"`
}

type Sources struct {
	Repo           string `json:"repo,omitempty" jsonschema:"description=Git repository shown in the commits tab,default=."`
	Feed           string `json:"feed,omitempty" jsonschema:"description=JSONL activity file followed by the feed tab"`
	CommitLimit    int    `json:"commit_limit,omitempty" jsonschema:"description=Maximum number of commits loaded,default=500,minimum=1"`
	FeedMaxRecords int    `json:"feed_max_records,omitempty" jsonschema:"description=Maximum number of feed records kept,default=5000,minimum=1"`
}

// Config holds the configuration for townview.
type Config struct {
	Options *Options     `json:"options,omitempty" jsonschema:"description=General application options"`
	List    *ListOptions `json:"list,omitempty" jsonschema:"description=List rendering options"`
	Sources *Sources     `json:"sources,omitempty" jsonschema:"description=Where the dashboard reads its data"`

	// Internal
	workingDir    string `json:"-"`
	dataConfigDir string `json:"-"`
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// Overscan returns the configured overscan or fallback when unset.
func (c *Config) Overscan(fallback int) int {
	if c.List == nil || c.List.Overscan == nil {
		return fallback
	}
	return max(0, *c.List.Overscan)
}

// DataPath joins elem onto the data directory.
func (c *Config) DataPath(elem ...string) string {
	return filepath.Join(append([]string{c.Options.DataDirectory}, elem...)...)
}

// SetConfigField writes value at the dotted key path of the global data
// config file. The in-memory config is not reloaded.
func (c *Config) SetConfigField(key string, value any) error {
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigDir, []byte(newValue), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
