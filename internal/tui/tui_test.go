package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeremyKalmus/town-view-sub001/internal/config"
	"github.com/JeremyKalmus/town-view-sub001/internal/scrollstate"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/gitlog"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/util"
)

func testConfig() *config.Config {
	return &config.Config{
		Options: &config.Options{},
		List:    &config.ListOptions{EstimatedHeight: 3},
		Sources: &config.Sources{},
	}
}

func newTestModel(t *testing.T) *appModel {
	t.Helper()
	m := New(context.Background(), Options{
		Config: testConfig(),
		Store:  scrollstate.New(0),
	}).(*appModel)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return m
}

func press(m *appModel, s string) tea.Cmd {
	r := []rune(s)[0]
	_, cmd := m.Update(tea.KeyPressMsg{Code: r, Text: s})
	return cmd
}

func typeText(m *appModel, s string) {
	for _, r := range s {
		press(m, string(r))
	}
}

func commits(n int) []gitlog.Commit {
	out := make([]gitlog.Commit, n)
	for i := range out {
		out[i] = gitlog.Commit{
			Hash:    fmt.Sprintf("%040d", i),
			Author:  "mayor",
			When:    time.Now().Add(-time.Duration(i) * time.Hour),
			Subject: fmt.Sprintf("commit %d", i),
		}
	}
	out[7].Subject = "fix convoy routing"
	return out
}

func records(n int) []feed.Record {
	out := make([]feed.Record, n)
	for i := range out {
		out[i] = feed.Record{
			ID:    fmt.Sprintf("rec-%d", i),
			Kind:  feed.KindAgent,
			Title: fmt.Sprintf("event %d", i),
		}
	}
	return out
}

func TestFilterItems(t *testing.T) {
	t.Parallel()

	items := []string{"alpha", "beta", "gamma", "alphabet"}
	id := func(s string) string { return s }

	t.Run("empty query keeps everything", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, items, filterItems(items, "", id))
	})

	t.Run("matches keep their original order", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"alpha", "alphabet"}, filterItems(items, "alp", id))
	})

	t.Run("no match returns an empty slice", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, filterItems(items, "zzz", id))
	})
}

func TestRenderers(t *testing.T) {
	t.Parallel()

	t.Run("commits render in exactly two lines", func(t *testing.T) {
		t.Parallel()
		for _, c := range commits(10) {
			out := renderCommit(c, 0, 30, false)
			assert.Equal(t, commitRowHeight, lipgloss.Height(out))
		}
	})

	t.Run("records grow with their body", func(t *testing.T) {
		t.Parallel()
		r := feed.Record{Kind: feed.KindMail, Title: "hello"}
		assert.Equal(t, 1, lipgloss.Height(renderRecord(r, 0, 40, false)))

		r.Body = strings.Repeat("word ", 30)
		assert.Greater(t, lipgloss.Height(renderRecord(r, 0, 40, false)), 2)
	})

	t.Run("relative time", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, "just now", relativeTime(now.Add(-time.Second), now))
		assert.Equal(t, "5m ago", relativeTime(now.Add(-5*time.Minute), now))
		assert.Equal(t, "3h ago", relativeTime(now.Add(-3*time.Hour), now))
		assert.Equal(t, "2d ago", relativeTime(now.Add(-48*time.Hour), now))
		assert.Equal(t, "2025-01-01", relativeTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), now))
	})
}

func TestAppModel(t *testing.T) {
	t.Parallel()

	t.Run("view fills the window", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		assert.Len(t, strings.Split(m.View(), "\n"), 20)
		assert.Contains(t, m.View(), "Waiting for activity")
	})

	t.Run("tabs cycle", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		press(m, "2")
		assert.Equal(t, tabCommits, m.active)
		m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
		assert.Equal(t, tabDiff, m.active)
		m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
		assert.Equal(t, tabFeed, m.active)
		press(m, "h")
		assert.Equal(t, tabDiff, m.active)
	})

	t.Run("switching tabs resumes the scroll position", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		m.Update(commitsLoadedMsg{commits: commits(100)})
		press(m, "2")
		for range 5 {
			press(m, "j")
		}
		require.Equal(t, 5, m.commitList.ScrollOffset())

		press(m, "1")
		assert.Nil(t, m.commitList)
		press(m, "2")
		assert.Equal(t, 5, m.commitList.ScrollOffset())
	})

	t.Run("commits tab selects a commit on mount", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		press(m, "2")
		assert.Equal(t, -1, m.commitList.SelectedIndex())
		m.Update(commitsLoadedMsg{commits: commits(3)})
		assert.Equal(t, 0, m.commitList.SelectedIndex())
	})

	t.Run("filter narrows and clears", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		m.Update(commitsLoadedMsg{commits: commits(20)})
		press(m, "2")

		press(m, "/")
		require.True(t, m.filtering)
		typeText(m, "convoy")
		require.Len(t, m.commitList.Items(), 1)
		assert.Equal(t, "fix convoy routing", m.commitList.Items()[0].Subject)

		m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		assert.False(t, m.filtering)
		assert.Equal(t, "convoy", m.queries[tabCommits])

		m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
		assert.Len(t, m.commitList.Items(), 20)
	})

	t.Run("copy writes the selected commit hash", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		var copied string
		m.copyText = func(s string) error {
			copied = s
			return nil
		}
		cs := commits(3)
		m.Update(commitsLoadedMsg{commits: cs})
		press(m, "2")

		cmd := press(m, "y")
		require.NotNil(t, cmd)
		assert.Equal(t, cs[0].Hash, copied)
		msg, ok := cmd().(util.InfoMsg)
		require.True(t, ok)
		assert.Equal(t, util.InfoTypeInfo, msg.Type)
	})

	t.Run("copy without a selection warns", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		m.copyText = func(string) error {
			t.Fatal("nothing should be copied")
			return nil
		}
		cmd := press(m, "y")
		msg, ok := cmd().(util.InfoMsg)
		require.True(t, ok)
		assert.Equal(t, util.InfoTypeWarn, msg.Type)
	})

	t.Run("feed stays pinned to the tail", func(t *testing.T) {
		t.Parallel()
		ch := make(chan []feed.Record, 1)
		m := New(context.Background(), Options{
			Config: testConfig(),
			Store:  scrollstate.New(0),
			Feed:   ch,
		}).(*appModel)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

		_, cmd := m.Update(feedSnapshotMsg{records: records(50)})
		require.NotNil(t, cmd)
		assert.True(t, m.feedList.AtBottom())
		assert.Contains(t, m.View(), "event 49")

		m.Update(feedSnapshotMsg{records: records(60)})
		assert.True(t, m.feedList.AtBottom())
		assert.Contains(t, m.View(), "event 59")
	})

	t.Run("feed scrolled away from the tail stays put", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		m.Update(feedSnapshotMsg{records: records(50)})
		press(m, "g")
		require.Equal(t, 0, m.feedList.ScrollOffset())

		m.Update(feedSnapshotMsg{records: records(60)})
		assert.Equal(t, 0, m.feedList.ScrollOffset())
		assert.Contains(t, m.View(), "event 0")
	})

	t.Run("loaded diff opens in its own scroll slot", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		m.Update(diffLoadedMsg{id: "a", title: "a", rows: nil})
		assert.Equal(t, tabDiff, m.active)
		assert.Equal(t, "diff:a", m.stateKey(tabDiff))
		assert.Contains(t, m.View(), "No diff loaded")
	})

	t.Run("status messages expire", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		_, cmd := m.Update(util.InfoMsg{Type: util.InfoTypeError, Msg: "boom"})
		require.NotNil(t, cmd)
		assert.Contains(t, m.View(), "boom")
		m.Update(util.ClearStatusMsg{})
		assert.NotContains(t, m.View(), "boom")
	})

	t.Run("quit", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t)
		cmd := press(m, "q")
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}
