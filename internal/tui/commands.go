package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/JeremyKalmus/town-view-sub001/internal/source/diff"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/gitlog"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/util"
)

const statusTTL = 4 * time.Second

type (
	feedSnapshotMsg struct {
		records []feed.Record
	}
	feedClosedMsg struct{}

	commitsLoadedMsg struct {
		commits []gitlog.Commit
	}

	diffLoadedMsg struct {
		// id identifies the diff for scroll state, title is shown in the tab.
		id    string
		title string
		rows  []diff.Row
	}
)

// waitForFeed delivers the next snapshot from ch.
func waitForFeed(ch <-chan []feed.Record) tea.Cmd {
	return func() tea.Msg {
		records, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return feedSnapshotMsg{records: records}
	}
}

func loadCommits(ctx context.Context, repo string, limit int) tea.Cmd {
	return func() tea.Msg {
		commits, err := gitlog.Load(ctx, repo, limit)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
		}
		return commitsLoadedMsg{commits: commits}
	}
}

func loadCommitDiff(ctx context.Context, repo string, c gitlog.Commit) tea.Cmd {
	return func() tea.Msg {
		patch, err := gitlog.Patch(ctx, repo, c.Hash)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
		}
		return diffLoadedMsg{
			id:    "commit:" + c.Hash,
			title: c.Short(),
			rows:  diff.Parse(patch),
		}
	}
}

func loadFileDiff(oldPath, newPath string) tea.Cmd {
	return func() tea.Msg {
		before, err := os.ReadFile(oldPath)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: fmt.Sprintf("failed to read %s: %v", oldPath, err)}
		}
		after, err := os.ReadFile(newPath)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: fmt.Sprintf("failed to read %s: %v", newPath, err)}
		}
		return diffLoadedMsg{
			id:    "files:" + oldPath + ":" + newPath,
			title: newPath,
			rows:  diff.Rows(oldPath, string(before), newPath, string(after)),
		}
	}
}

func clearStatusAfter(ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return util.ClearStatusMsg{}
	})
}
