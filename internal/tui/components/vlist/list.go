package vlist

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/JeremyKalmus/town-view-sub001/internal/scrollstate"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/components/core/layout"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/styles"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/util"
	"github.com/JeremyKalmus/town-view-sub001/internal/virtual"
)

// RenderFunc renders one item at the given width. Selected is set for the
// item under the selection cursor.
type RenderFunc[T any] func(item T, index, width int, selected bool) string

type List[T any] interface {
	util.Model
	layout.Sizeable
	layout.Focusable

	MoveUp(int) tea.Cmd
	MoveDown(int) tea.Cmd
	GoToTop() tea.Cmd
	GoToBottom() tea.Cmd
	SelectItemAbove() tea.Cmd
	SelectItemBelow() tea.Cmd
	SetItems([]T) tea.Cmd
	SelectedItem() *T
	SelectedIndex() int
	Items() []T
	Range() virtual.Range
	ScrollOffset() int
	AtBottom() bool
	Close()
}

const (
	ViewportDefaultScrollSize = 2

	// maxMeasurePasses bounds how often a measured list re-resolves its
	// range after heights change within one render.
	maxMeasurePasses = 4
)

type confOptions struct {
	width, height int
	keyMap        KeyMap
	focused       bool
	enableMouse   bool

	measured  bool
	rowHeight int
	estimate  int
	overscan  int

	store            *scrollstate.Store
	stateKey         string
	initialScrollTop int

	emptyText string
	logger    *slog.Logger
}

type list[T any] struct {
	*confOptions

	window *virtual.Window[T]
	render RenderFunc[T]

	selected int

	// rendered item views, valid for the current width
	viewCache map[cacheKey]string
	rendered  string
}

// cacheKey separates keyed items from positional ones, whose placement key
// is synthesized from the index and may equal a real key.
type cacheKey struct {
	positional bool
	key        string
}

type ListOption func(*confOptions)

// WithSize sets the size of the list.
func WithSize(width, height int) ListOption {
	return func(l *confOptions) {
		l.width = width
		l.height = height
	}
}

// WithUniform makes every item exactly rowHeight lines tall.
func WithUniform(rowHeight int) ListOption {
	return func(l *confOptions) {
		l.measured = false
		l.rowHeight = rowHeight
	}
}

// WithMeasured sizes items by their rendered height, starting from estimate
// until an item has been rendered once.
func WithMeasured(estimate int) ListOption {
	return func(l *confOptions) {
		l.measured = true
		l.estimate = estimate
	}
}

func WithOverscan(n int) ListOption {
	return func(l *confOptions) {
		l.overscan = n
	}
}

// WithScrollState resumes the list from the offset recorded under key and
// records every scroll there.
func WithScrollState(store *scrollstate.Store, key string) ListOption {
	return func(l *confOptions) {
		l.store = store
		l.stateKey = key
	}
}

func WithInitialScrollTop(offset int) ListOption {
	return func(l *confOptions) {
		l.initialScrollTop = offset
	}
}

// WithEmptyText sets the placeholder shown when the list has no items.
func WithEmptyText(text string) ListOption {
	return func(l *confOptions) {
		l.emptyText = text
	}
}

func WithKeyMap(keyMap KeyMap) ListOption {
	return func(l *confOptions) {
		l.keyMap = keyMap
	}
}

func WithFocus(focus bool) ListOption {
	return func(l *confOptions) {
		l.focused = focus
	}
}

func WithEnableMouse() ListOption {
	return func(l *confOptions) {
		l.enableMouse = true
	}
}

func WithLogger(logger *slog.Logger) ListOption {
	return func(l *confOptions) {
		l.logger = logger
	}
}

// New creates a list that renders only the items intersecting its viewport.
func New[T any](items []T, render RenderFunc[T], getKey virtual.KeyFunc[T], opts ...ListOption) List[T] {
	conf := &confOptions{
		keyMap:    DefaultKeyMap(),
		focused:   true,
		rowHeight: 1,
		overscan:  virtual.DefaultOverscan,
		emptyText: "Nothing here yet",
	}
	for _, opt := range opts {
		opt(conf)
	}

	windowOpts := []virtual.WindowOption{
		virtual.WithOverscan(conf.overscan),
		virtual.WithInitialScrollTop(conf.initialScrollTop),
	}
	if conf.store != nil {
		windowOpts = append(windowOpts, virtual.WithScrollState(conf.store, conf.stateKey))
	}
	if conf.logger != nil {
		windowOpts = append(windowOpts, virtual.WithLogger(conf.logger))
	}

	var window *virtual.Window[T]
	if conf.measured {
		window = virtual.NewMeasuredWindow(items, conf.estimate, getKey, windowOpts...)
	} else {
		window = virtual.NewUniformWindow(items, conf.rowHeight, getKey, windowOpts...)
	}

	l := &list[T]{
		confOptions: conf,
		window:      window,
		render:      render,
		selected:    -1,
		viewCache:   make(map[cacheKey]string),
	}
	// The recorded offset is clamped against the real viewport once the
	// size is known.
	window.OnResize(conf.width, conf.height)
	l.renderViewport()
	return l
}

// Init implements List.
func (l *list[T]) Init() tea.Cmd {
	l.renderViewport()
	return nil
}

// Update implements List.
func (l *list[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.window.Closed() {
		return l, nil
	}
	switch msg := msg.(type) {
	case tea.MouseWheelMsg:
		if l.enableMouse {
			return l.handleMouseWheel(msg)
		}
		return l, nil
	case tea.KeyPressMsg:
		if !l.focused {
			return l, nil
		}
		switch {
		case key.Matches(msg, l.keyMap.LineDown):
			return l, l.MoveDown(1)
		case key.Matches(msg, l.keyMap.LineUp):
			return l, l.MoveUp(1)
		case key.Matches(msg, l.keyMap.SelectNext):
			return l, l.SelectItemBelow()
		case key.Matches(msg, l.keyMap.SelectPrev):
			return l, l.SelectItemAbove()
		case key.Matches(msg, l.keyMap.HalfPageDown):
			return l, l.MoveDown(l.height / 2)
		case key.Matches(msg, l.keyMap.HalfPageUp):
			return l, l.MoveUp(l.height / 2)
		case key.Matches(msg, l.keyMap.PageDown):
			return l, l.MoveDown(l.height)
		case key.Matches(msg, l.keyMap.PageUp):
			return l, l.MoveUp(l.height)
		case key.Matches(msg, l.keyMap.Bottom):
			return l, l.GoToBottom()
		case key.Matches(msg, l.keyMap.Top):
			return l, l.GoToTop()
		}
	}
	return l, nil
}

func (l *list[T]) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Button {
	case tea.MouseWheelDown:
		cmd = l.MoveDown(ViewportDefaultScrollSize)
	case tea.MouseWheelUp:
		cmd = l.MoveUp(ViewportDefaultScrollSize)
	}
	return l, cmd
}

// View implements List.
func (l *list[T]) View() string {
	if l.height <= 0 || l.width <= 0 {
		return ""
	}
	t := styles.CurrentTheme()
	if l.window.Empty() {
		return t.S().Muted.
			Width(l.width).
			Height(l.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(l.emptyText)
	}
	return l.rendered
}

// renderViewport resolves the visible range, reports measured heights back
// to the window and composes exactly height lines of output.
func (l *list[T]) renderViewport() {
	if l.window.Closed() {
		return
	}
	if l.window.Empty() || l.width <= 0 || l.height <= 0 {
		l.rendered = ""
		return
	}

	if l.measured {
		settled := false
		for range maxMeasurePasses {
			// A position recorded by an earlier mount names its top item;
			// follow that item while the heights around it are measured.
			l.window.SeekAnchor()
			changed := false
			for _, p := range l.window.Visible() {
				if l.window.Measure(p.Index, lipgloss.Height(l.itemView(p))) {
					changed = true
				}
			}
			if !changed {
				settled = true
				break
			}
		}
		if settled {
			l.window.DropAnchor()
		}
	}

	vp := l.window.Viewport()
	top, bottom := vp.ScrollOffset, vp.Bottom()
	lines := make([]string, 0, l.height)
	for _, p := range l.window.Visible() {
		if p.Offset+p.Height <= top || p.Offset >= bottom {
			// overscan
			continue
		}
		for i, line := range fitLines(l.itemView(p), p.Height) {
			y := p.Offset + i
			if y < top || y >= bottom {
				continue
			}
			lines = append(lines, ansi.Truncate(line, l.width, ""))
		}
	}
	for len(lines) < l.height {
		lines = append(lines, "")
	}
	l.rendered = strings.Join(lines, "\n")
	l.window.SavePosition()
}

func (l *list[T]) itemView(p virtual.Placement[T]) string {
	if p.Index == l.selected {
		return l.render(p.Item, p.Index, l.width, true)
	}
	ck := cacheKey{positional: p.Positional, key: p.Key}
	if view, ok := l.viewCache[ck]; ok {
		return view
	}
	view := l.render(p.Item, p.Index, l.width, false)
	l.viewCache[ck] = view
	return view
}

// fitLines splits view into exactly height lines.
func fitLines(view string, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		return lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// firstInView returns the first item whose top edge is inside the viewport.
func (l *list[T]) firstInView() int {
	index := l.window.Index()
	scroll := l.window.ScrollOffset()
	i := index.IndexAtOffset(scroll)
	if i != virtual.ItemNotFound && index.OffsetOf(i) < scroll && i+1 < index.Len() {
		i++
	}
	return i
}

func (l *list[T]) MoveDown(n int) tea.Cmd {
	l.window.ScrollBy(n)
	l.renderViewport()
	return nil
}

func (l *list[T]) MoveUp(n int) tea.Cmd {
	l.window.ScrollBy(-n)
	l.renderViewport()
	return nil
}

func (l *list[T]) GoToTop() tea.Cmd {
	l.window.ScrollToTop()
	if l.selected >= 0 {
		l.selected = 0
	}
	l.renderViewport()
	return nil
}

func (l *list[T]) GoToBottom() tea.Cmd {
	if l.window.Closed() {
		return nil
	}
	if l.selected >= 0 {
		l.selected = l.window.Len() - 1
	}
	// Rendering the tail of a measured list replaces estimates with real
	// heights, which moves the bottom. Follow it for a bounded number of
	// passes.
	for range maxMeasurePasses {
		l.window.ScrollToBottom()
		l.renderViewport()
		if l.window.AtBottom() {
			break
		}
	}
	return nil
}

// SelectItemBelow moves the selection cursor down one item. The first call
// selects the topmost item in view.
func (l *list[T]) SelectItemBelow() tea.Cmd {
	if l.window.Closed() || l.window.Empty() {
		return nil
	}
	next := l.selected + 1
	if l.selected < 0 {
		next = l.firstInView()
	}
	if next >= l.window.Len() {
		return nil
	}
	return l.selectIndex(next)
}

func (l *list[T]) SelectItemAbove() tea.Cmd {
	if l.window.Closed() || l.window.Empty() {
		return nil
	}
	prev := l.selected - 1
	if l.selected < 0 {
		prev = l.firstInView()
	}
	if prev < 0 {
		return nil
	}
	return l.selectIndex(prev)
}

func (l *list[T]) selectIndex(i int) tea.Cmd {
	l.selected = i
	l.window.ScrollToIndex(i)
	l.renderViewport()
	return nil
}

func (l *list[T]) SelectedItem() *T {
	if l.selected < 0 || l.selected >= l.window.Len() {
		return nil
	}
	item := l.window.Items()[l.selected]
	return &item
}

func (l *list[T]) SelectedIndex() int {
	return l.selected
}

// SetItems replaces the items wholesale. The selection follows its item by
// key when the key is still present.
func (l *list[T]) SetItems(items []T) tea.Cmd {
	if l.window.Closed() {
		return nil
	}
	selectedKey := ""
	if p, ok := l.window.Placement(l.selected); ok && !p.Positional {
		selectedKey = p.Key
	}

	l.window.OnItemsChanged(items)
	clear(l.viewCache)

	switch {
	case l.selected < 0:
	case len(items) == 0:
		l.selected = -1
	case selectedKey != "" && l.window.IndexOf(selectedKey) != virtual.ItemNotFound:
		l.selected = l.window.IndexOf(selectedKey)
	default:
		l.selected = min(l.selected, len(items)-1)
	}
	l.renderViewport()
	return nil
}

func (l *list[T]) Items() []T {
	return l.window.Items()
}

func (l *list[T]) Range() virtual.Range {
	return l.window.Range()
}

func (l *list[T]) ScrollOffset() int {
	return l.window.ScrollOffset()
}

// AtBottom reports whether the last line of the last item is in view.
func (l *list[T]) AtBottom() bool {
	return l.window.AtBottom()
}

// Close unmounts the list. The last scroll offset stays in the scroll state
// store for the next list mounted under the same key.
func (l *list[T]) Close() {
	l.window.Close()
	clear(l.viewCache)
}

// GetSize implements List.
func (l *list[T]) GetSize() (int, int) {
	return l.width, l.height
}

// SetSize implements List.
func (l *list[T]) SetSize(width int, height int) tea.Cmd {
	if l.window.Closed() {
		return nil
	}
	if width != l.width {
		clear(l.viewCache)
	}
	l.width = width
	l.height = height
	l.window.OnResize(width, height)
	l.renderViewport()
	return nil
}

// Focus implements List.
func (l *list[T]) Focus() tea.Cmd {
	l.focused = true
	return nil
}

// Blur implements List.
func (l *list[T]) Blur() tea.Cmd {
	l.focused = false
	return nil
}

// IsFocused implements List.
func (l *list[T]) IsFocused() bool {
	return l.focused
}
