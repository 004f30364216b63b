package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/JeremyKalmus/town-view-sub001/internal/config"
	"github.com/JeremyKalmus/town-view-sub001/internal/notification"
	"github.com/JeremyKalmus/town-view-sub001/internal/scrollstate"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/diff"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/gitlog"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/components/core/layout"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/components/vlist"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/styles"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/util"
	"github.com/JeremyKalmus/town-view-sub001/internal/virtual"
)

type tab int

const (
	tabFeed tab = iota
	tabCommits
	tabDiff
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabFeed:
		return "feed"
	case tabCommits:
		return "commits"
	case tabDiff:
		return "diff"
	default:
		return "unknown"
	}
}

// chrome is the number of lines around the list: tabs, status and help.
const chrome = 3

// Options wires the dashboard to its data sources.
type Options struct {
	Config *config.Config
	// Store keeps scroll positions across tab switches. Defaults to
	// scrollstate.Default().
	Store *scrollstate.Store
	// Feed delivers feed snapshots. Nil leaves the feed tab empty.
	Feed     <-chan []feed.Record
	Notifier *notification.Notifier
	// OldFile and NewFile, when both set, are diffed into the diff tab on
	// startup.
	OldFile string
	NewFile string
	Logger  *slog.Logger
}

// activeList is the part of a mounted list the app needs regardless of its
// item type.
type activeList interface {
	util.Model
	layout.Sizeable
	Close()
}

type appModel struct {
	ctx    context.Context
	opts   Options
	logger *slog.Logger
	keyMap KeyMap
	help   help.Model
	filter textinput.Model

	width, height int
	active        tab

	feedList   vlist.List[feed.Record]
	commitList vlist.List[gitlog.Commit]
	diffList   vlist.List[diff.Row]

	records   []feed.Record
	commits   []gitlog.Commit
	rows      []diff.Row
	diffID    string
	diffTitle string

	filtering bool
	queries   [tabCount]string

	status   util.InfoMsg
	copyText func(string) error
}

// New returns the dashboard model. The context bounds every background
// load the model starts.
func New(ctx context.Context, opts Options) tea.Model {
	if opts.Store == nil {
		opts.Store = scrollstate.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := styles.CurrentTheme()

	h := help.New()
	h.Styles.ShortKey = t.S().Muted
	h.Styles.ShortDesc = t.S().Subtle
	h.Styles.ShortSeparator = t.S().Subtle
	h.Styles.FullKey = t.S().Muted
	h.Styles.FullDesc = t.S().Subtle
	h.Styles.FullSeparator = t.S().Subtle

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"

	m := &appModel{
		ctx:      ctx,
		opts:     opts,
		logger:   logger,
		keyMap:   DefaultKeyMap(),
		help:     h,
		filter:   ti,
		copyText: clipboard.WriteAll,
	}
	m.mount(tabFeed)
	return m
}

func (m *appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Feed != nil {
		cmds = append(cmds, waitForFeed(m.opts.Feed))
	}
	if src := m.opts.Config.Sources; src != nil && src.Repo != "" {
		cmds = append(cmds, loadCommits(m.ctx, src.Repo, src.CommitLimit))
	}
	if m.opts.OldFile != "" && m.opts.NewFile != "" {
		cmds = append(cmds, loadFileDiff(m.opts.OldFile, m.opts.NewFile))
	}
	return tea.Batch(cmds...)
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.filter.SetWidth(max(1, m.width-2))
		return m, m.current().SetSize(m.width, m.listHeight())

	case feedSnapshotMsg:
		m.records = msg.records
		if m.opts.Notifier != nil {
			m.opts.Notifier.MailArrived(m.ctx, msg.records)
		}
		if m.active == tabFeed {
			pinned := m.feedList.AtBottom()
			m.feedList.SetItems(m.filteredRecords())
			if pinned {
				m.feedList.GoToBottom()
			}
		}
		return m, waitForFeed(m.opts.Feed)

	case feedClosedMsg:
		m.logger.Debug("Feed closed")
		return m, nil

	case commitsLoadedMsg:
		m.commits = msg.commits
		m.logger.Debug("Commits loaded", "count", len(msg.commits))
		if m.active == tabCommits {
			m.commitList.SetItems(m.filteredCommits())
			m.ensureSelection()
		}
		return m, nil

	case diffLoadedMsg:
		m.rows = msg.rows
		m.diffID = msg.id
		m.diffTitle = msg.title
		m.queries[tabDiff] = ""
		m.mount(tabDiff)
		return m, nil

	case util.InfoMsg:
		m.status = msg
		ttl := msg.TTL
		if ttl <= 0 {
			ttl = statusTTL
		}
		return m, clearStatusAfter(ttl)

	case util.ClearStatusMsg:
		m.status = util.InfoMsg{}
		return m, nil

	case tea.KeyPressMsg:
		if m.filtering {
			return m, m.handleFilterKey(msg)
		}
		return m, m.handleKey(msg)
	}

	_, cmd := m.current().Update(msg)
	return m, cmd
}

func (m *appModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keyMap.NextTab):
		m.mount((m.active + 1) % tabCount)
		return nil
	case key.Matches(msg, m.keyMap.PrevTab):
		m.mount((m.active + tabCount - 1) % tabCount)
		return nil
	case key.Matches(msg, m.keyMap.FeedTab):
		m.mount(tabFeed)
		return nil
	case key.Matches(msg, m.keyMap.CommitsTab):
		m.mount(tabCommits)
		return nil
	case key.Matches(msg, m.keyMap.DiffTab):
		m.mount(tabDiff)
		return nil
	case key.Matches(msg, m.keyMap.Filter):
		m.filtering = true
		m.filter.SetValue(m.queries[m.active])
		m.filter.CursorEnd()
		return m.filter.Focus()
	case key.Matches(msg, m.keyMap.ClearFilter):
		if m.queries[m.active] != "" {
			m.applyFilter("")
		}
		return nil
	case key.Matches(msg, m.keyMap.Copy):
		return m.copySelected()
	case m.active == tabCommits && key.Matches(msg, m.keyMap.Open):
		c := m.commitList.SelectedItem()
		if c == nil {
			return util.ReportWarn("No commit selected")
		}
		return loadCommitDiff(m.ctx, m.opts.Config.Sources.Repo, *c)
	}
	_, cmd := m.current().Update(msg)
	return cmd
}

func (m *appModel) handleFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.ClearFilter):
		m.filtering = false
		m.filter.Blur()
		m.applyFilter("")
		return nil
	case key.Matches(msg, m.keyMap.ApplyFilter):
		m.filtering = false
		m.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter(m.filter.Value())
	return cmd
}

func (m *appModel) applyFilter(query string) {
	if query == m.queries[m.active] {
		return
	}
	m.queries[m.active] = query
	switch m.active {
	case tabFeed:
		m.feedList.SetItems(m.filteredRecords())
	case tabCommits:
		m.commitList.SetItems(m.filteredCommits())
		m.ensureSelection()
	case tabDiff:
		m.diffList.SetItems(m.filteredRows())
	}
}

func (m *appModel) filteredRecords() []feed.Record {
	return filterItems(m.records, m.queries[tabFeed], recordText)
}

func (m *appModel) filteredCommits() []gitlog.Commit {
	return filterItems(m.commits, m.queries[tabCommits], commitText)
}

func (m *appModel) filteredRows() []diff.Row {
	return filterItems(m.rows, m.queries[tabDiff], rowText)
}

// ensureSelection puts the commit cursor on the first commit in view so
// enter always has a target.
func (m *appModel) ensureSelection() {
	if m.commitList.SelectedIndex() < 0 && len(m.commitList.Items()) > 0 {
		m.commitList.SelectItemBelow()
	}
}

func (m *appModel) copySelected() tea.Cmd {
	var text string
	switch m.active {
	case tabFeed:
		if r := m.feedList.SelectedItem(); r != nil {
			text = strings.TrimSpace(r.Title + "\n" + r.Body)
		}
	case tabCommits:
		if c := m.commitList.SelectedItem(); c != nil {
			text = c.Hash
		}
	case tabDiff:
		if r := m.diffList.SelectedItem(); r != nil {
			text = r.Text
		}
	}
	if text == "" {
		return util.ReportWarn("Nothing selected")
	}
	if err := m.copyText(text); err != nil {
		return util.ReportError(fmt.Errorf("failed to copy: %w", err))
	}
	return util.ReportInfo("Copied to clipboard")
}

func (m *appModel) listHeight() int {
	return max(0, m.height-chrome)
}

func (m *appModel) current() activeList {
	switch m.active {
	case tabCommits:
		return m.commitList
	case tabDiff:
		return m.diffList
	default:
		return m.feedList
	}
}

func (m *appModel) stateKey(t tab) string {
	if t == tabDiff {
		return "diff:" + m.diffID
	}
	return t.String()
}

// mount closes the active list and builds a fresh one for t. Scroll
// positions come back from the store under the tab's state key.
func (m *appModel) mount(t tab) {
	if l := m.current(); l != nil {
		l.Close()
	}
	m.feedList, m.commitList, m.diffList = nil, nil, nil
	m.active = t
	m.filtering = false
	m.filter.Blur()

	opts := []vlist.ListOption{
		vlist.WithSize(m.width, m.listHeight()),
		vlist.WithScrollState(m.opts.Store, m.stateKey(t)),
		vlist.WithOverscan(m.opts.Config.Overscan(virtual.DefaultOverscan)),
		vlist.WithLogger(m.logger),
	}
	if m.opts.Config.List == nil || !m.opts.Config.List.DisableMouse {
		opts = append(opts, vlist.WithEnableMouse())
	}

	switch t {
	case tabFeed:
		estimate := 0
		if m.opts.Config.List != nil {
			estimate = m.opts.Config.List.EstimatedHeight
		}
		m.feedList = vlist.New(m.filteredRecords(), renderRecord, recordKey,
			append(opts, vlist.WithMeasured(max(1, estimate)), vlist.WithEmptyText("Waiting for activity"))...)
	case tabCommits:
		m.commitList = vlist.New(m.filteredCommits(), renderCommit, commitKey,
			append(opts, vlist.WithUniform(commitRowHeight), vlist.WithEmptyText("No commits"))...)
		m.ensureSelection()
	case tabDiff:
		m.diffList = vlist.New(m.filteredRows(), renderRow, rowKey,
			append(opts, vlist.WithUniform(1), vlist.WithEmptyText("No diff loaded"))...)
	}
	m.logger.Debug("Mounted tab", "tab", t, "state_key", m.stateKey(t))
}

func (m *appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.tabsView(),
		m.current().View(),
		m.statusView(),
		ansi.Truncate(m.help.View(m.keyMap), m.width, "…"),
	)
}

func (m *appModel) tabsView() string {
	t := styles.CurrentTheme()
	parts := make([]string, 0, tabCount)
	for i := range tabCount {
		name := i.String()
		if i == tabDiff && m.diffTitle != "" {
			name += " " + m.diffTitle
		}
		if q := m.queries[i]; q != "" {
			name += " /" + q
		}
		if i == m.active {
			parts = append(parts, t.S().TabActive.Render(name))
		} else {
			parts = append(parts, t.S().TabInactive.Render(name))
		}
	}
	return ansi.Truncate(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width, "…")
}

func (m *appModel) statusView() string {
	if m.filtering {
		return ansi.Truncate(m.filter.View(), m.width, "…")
	}
	t := styles.CurrentTheme()
	style := t.S().Status
	switch m.status.Type {
	case util.InfoTypeError:
		style = t.S().StatusError
	case util.InfoTypeWarn:
		style = t.S().Base.Foreground(t.Warning)
	}
	return ansi.Truncate(style.Render(m.status.Msg), m.width, "…")
}
