package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/exp/slice"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/JeremyKalmus/town-view-sub001/internal/config"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
)

// AgentActivity is the feed records of one agent, oldest first.
type AgentActivity struct {
	Agent   string        `json:"agent" yaml:"agent"`
	Records []feed.Record `json:"records" yaml:"records"`
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Inspect the activity feed",
	Long:  `List and export the records of the activity feed without starting the dashboard`,
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feed records",
	Long:  `List the current feed records grouped by agent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return runFeed(cmd, format, false)
	},
}

var feedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export feed records",
	Long:  `Export the current feed records with their bodies to different formats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return runFeed(cmd, format, true)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedExportCmd)

	feedCmd.PersistentFlags().String("feed", "", "JSONL activity file (defaults to the configured feed)")
	feedCmd.PersistentFlags().StringSliceP("kind", "k", nil, "Only include records of these kinds (agent, issue, mail, telemetry)")
	feedListCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml, markdown)")
	feedExportCmd.Flags().StringP("format", "f", "json", "Export format (json, yaml, markdown)")
}

func runFeed(cmd *cobra.Command, format string, includeBody bool) error {
	cwd, err := resolveCwd(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd, false)
	if err != nil {
		return err
	}
	path := cfg.Sources.Feed
	if p, _ := cmd.Flags().GetString("feed"); p != "" {
		path = absFrom(cwd, p)
	}

	records, err := feed.Load(cmd.Context(), path, cfg.Sources.FeedMaxRecords)
	if err != nil {
		return err
	}
	kinds, _ := cmd.Flags().GetStringSlice("kind")
	return formatFeed(cmd.OutOrStdout(), groupByAgent(filterKinds(records, kinds)), format, includeBody)
}

// filterKinds keeps the records of the given kinds. No kinds keeps all.
func filterKinds(records []feed.Record, kinds []string) []feed.Record {
	if len(kinds) == 0 {
		return records
	}
	kinds = slice.Uniq(kinds)
	out := make([]feed.Record, 0, len(records))
	for _, r := range records {
		if slice.ContainsAny(kinds, r.Kind) {
			out = append(out, r)
		}
	}
	return out
}

// groupByAgent keeps agents in order of their first record.
func groupByAgent(records []feed.Record) []AgentActivity {
	var groups []AgentActivity
	index := make(map[string]int)
	for _, r := range records {
		agent := r.Agent
		if agent == "" {
			agent = "town"
		}
		i, ok := index[agent]
		if !ok {
			i = len(groups)
			index[agent] = i
			groups = append(groups, AgentActivity{Agent: agent})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

func formatFeed(w io.Writer, groups []AgentActivity, format string, includeBody bool) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(groups, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(groups)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil
	case "markdown", "md":
		formatFeedMarkdown(w, groups, includeBody)
		return nil
	case "text":
		formatFeedText(w, groups)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatFeedMarkdown(w io.Writer, groups []AgentActivity, includeBody bool) {
	fmt.Fprintln(w, "# Feed")
	fmt.Fprintln(w)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "## %s\n\n", g.Agent)
		for _, r := range g.Records {
			fmt.Fprintf(w, "- **%s** %s", r.Kind, r.Title)
			if !r.Time.IsZero() {
				fmt.Fprintf(w, " (%s)", formatTimestamp(r.Time))
			}
			fmt.Fprintln(w)
			if includeBody && r.Body != "" {
				for line := range strings.SplitSeq(r.Body, "\n") {
					fmt.Fprintf(w, "  > %s\n", line)
				}
			}
		}
		fmt.Fprintln(w)
	}
}

func formatFeedText(w io.Writer, groups []AgentActivity) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	p := message.NewPrinter(language.English)
	for _, g := range groups {
		p.Fprintf(w, "%s (%d)\n", g.Agent, len(g.Records))
		for _, r := range g.Records {
			fmt.Fprintf(w, "  • [%s] %s\n", r.Kind, r.Title)
		}
	}
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
