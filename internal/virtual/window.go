package virtual

import (
	"log/slog"
	"strconv"

	"github.com/JeremyKalmus/town-view-sub001/internal/scrollstate"
)

// KeyFunc returns the identity of an item. Keys must be unique within one
// list; an empty or duplicate key makes the item fall back to its position.
type KeyFunc[T any] func(item T, index int) string

// Placement is an item resolved for rendering.
type Placement[T any] struct {
	Item   T
	Index  int
	Key    string
	Offset int
	Height int
	// Positional is set when the item has no usable key and is identified
	// by its index. Such identity does not survive reordering.
	Positional bool
}

type windowOptions struct {
	overscan         int
	initialScrollTop int
	store            *scrollstate.Store
	stateKey         string
	onScroll         func(offset int)
	logger           *slog.Logger
}

type WindowOption func(*windowOptions)

// WithOverscan sets the number of extra items rendered on each side of the
// viewport.
func WithOverscan(n int) WindowOption {
	return func(o *windowOptions) {
		o.overscan = max(0, n)
	}
}

// WithInitialScrollTop seeds the scroll offset at mount when no scroll state
// was recorded for the window.
func WithInitialScrollTop(offset int) WindowOption {
	return func(o *windowOptions) {
		o.initialScrollTop = max(0, offset)
	}
}

// WithScrollState persists the scroll offset in store under key and resumes
// from it at mount.
func WithScrollState(store *scrollstate.Store, key string) WindowOption {
	return func(o *windowOptions) {
		o.store = store
		o.stateKey = key
	}
}

// WithOnScroll registers an observer called with every applied offset.
func WithOnScroll(fn func(offset int)) WindowOption {
	return func(o *windowOptions) {
		o.onScroll = fn
	}
}

func WithLogger(logger *slog.Logger) WindowOption {
	return func(o *windowOptions) {
		o.logger = logger
	}
}

// Window is the windowing state machine. It owns a position index and the
// viewport geometry, and is driven by explicit events: OnScroll, OnResize,
// OnItemsChanged and, for measured windows, Measure. The rendering layer
// reads Visible and draws only those items.
//
// A Window is not safe for concurrent use; all events are expected on the
// goroutine that renders.
type Window[T any] struct {
	*windowOptions

	items  []T
	keys   []string
	getKey KeyFunc[T]

	index    PositionIndex
	uniform  *Uniform
	measured *Measured

	viewport Viewport
	width    int
	closed   bool

	// anchor recorded by a previous mount, waiting for the heights around
	// it to be measured
	pending *scrollstate.Position
	// set once the position is worth recording: it was restored or scrolled
	tracked bool
}

// NewUniformWindow creates a window whose items are all rowHeight lines tall.
func NewUniformWindow[T any](items []T, rowHeight int, getKey KeyFunc[T], opts ...WindowOption) *Window[T] {
	u := NewUniform(len(items), rowHeight)
	w := newWindow(items, getKey, opts)
	w.uniform = u
	w.index = u
	w.mount()
	return w
}

// NewMeasuredWindow creates a window whose items start at estimate lines and
// are corrected by Measure as they render.
func NewMeasuredWindow[T any](items []T, estimate int, getKey KeyFunc[T], opts ...WindowOption) *Window[T] {
	m := NewMeasured(len(items), estimate)
	w := newWindow(items, getKey, opts)
	w.measured = m
	w.index = m
	w.mount()
	return w
}

func newWindow[T any](items []T, getKey KeyFunc[T], opts []WindowOption) *Window[T] {
	w := &Window[T]{
		windowOptions: &windowOptions{
			overscan: DefaultOverscan,
		},
		items:  items,
		getKey: getKey,
	}
	for _, opt := range opts {
		opt(w.windowOptions)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

func (w *Window[T]) mount() {
	w.resolveKeys()
	if w.measured != nil {
		w.measured.SetKeys(w.keys)
	}

	offset := w.initialScrollTop
	if w.store != nil && w.stateKey != "" {
		if pos, ok := w.store.LookupPosition(w.stateKey); ok {
			offset = pos.Offset
			w.tracked = true
			if w.measured != nil && pos.Anchor != "" {
				w.pending = &pos
			}
		}
	}
	w.viewport.ScrollOffset = max(0, offset)
}

// resolveKeys computes one identity per item. Items with an empty or
// duplicate key get "" and are identified by position.
func (w *Window[T]) resolveKeys() {
	if cap(w.keys) >= len(w.items) {
		w.keys = w.keys[:len(w.items)]
	} else {
		w.keys = make([]string, len(w.items))
	}
	if w.getKey == nil {
		clear(w.keys)
		return
	}

	seen := make(map[string]int, len(w.items))
	var missing, duplicates int
	for i, item := range w.items {
		k := w.getKey(item, i)
		switch _, dup := seen[k]; {
		case k == "":
			missing++
		case dup:
			duplicates++
			k = ""
		default:
			seen[k] = i
		}
		w.keys[i] = k
	}
	if missing > 0 || duplicates > 0 {
		w.logger.Debug("List items fell back to positional identity",
			"state_key", w.stateKey,
			"missing", missing,
			"duplicates", duplicates,
		)
	}
}

func (w *Window[T]) maxScroll() int {
	return max(0, w.index.TotalHeight()-w.viewport.Height)
}

func (w *Window[T]) clampScroll() {
	w.viewport.ScrollOffset = min(max(0, w.viewport.ScrollOffset), w.maxScroll())
}

// OnScroll moves the viewport to offset, clamped to the scrollable range.
// The applied offset is recorded in the scroll state store and forwarded to
// the scroll observer.
func (w *Window[T]) OnScroll(offset int) {
	if w.closed {
		return
	}
	w.pending = nil
	w.tracked = true
	w.viewport.ScrollOffset = offset
	w.clampScroll()
	w.SavePosition()
	if w.onScroll != nil {
		w.onScroll(w.viewport.ScrollOffset)
	}
}

// position describes the current offset. Measured windows also name the item
// at the top of the viewport so the position survives re-estimation.
func (w *Window[T]) position() scrollstate.Position {
	pos := scrollstate.Position{Offset: w.viewport.ScrollOffset}
	if w.measured == nil || w.index.Len() == 0 {
		return pos
	}
	i := w.index.IndexAtOffset(pos.Offset)
	if i == ItemNotFound || w.keys[i] == "" {
		return pos
	}
	pos.Anchor = w.keys[i]
	pos.Delta = pos.Offset - w.index.OffsetOf(i)
	return pos
}

// SavePosition records the current position in the scroll state store. A
// window that was neither restored nor scrolled records nothing, and while a
// recorded anchor is still being sought the stored position is left alone.
func (w *Window[T]) SavePosition() {
	if w.closed || !w.tracked || w.pending != nil || w.store == nil || w.stateKey == "" {
		return
	}
	w.store.RecordPosition(w.stateKey, w.position())
}

// SeekAnchor moves the viewport to the anchor recorded by a previous mount,
// using the heights known so far. It returns false once there is nothing to
// seek: no anchor was recorded, it was dropped, or its item is gone.
func (w *Window[T]) SeekAnchor() bool {
	if w.closed || w.pending == nil {
		return false
	}
	i := w.IndexOf(w.pending.Anchor)
	if i == ItemNotFound {
		w.pending = nil
		return false
	}
	delta := min(w.pending.Delta, max(0, w.index.HeightOf(i)-1))
	w.viewport.ScrollOffset = w.index.OffsetOf(i) + delta
	w.clampScroll()
	return true
}

// DropAnchor stops seeking the recorded anchor. The renderer calls it once
// the items around the anchor are measured.
func (w *Window[T]) DropAnchor() {
	w.pending = nil
}

// ScrollBy moves the viewport by delta lines.
func (w *Window[T]) ScrollBy(delta int) {
	w.OnScroll(w.viewport.ScrollOffset + delta)
}

func (w *Window[T]) ScrollToTop() {
	w.OnScroll(0)
}

func (w *Window[T]) ScrollToBottom() {
	w.OnScroll(w.maxScroll())
}

// ScrollToIndex scrolls the least amount needed to bring the item at index
// fully into view. Items taller than the viewport are aligned to the top.
func (w *Window[T]) ScrollToIndex(index int) {
	if w.closed || index < 0 || index >= w.index.Len() {
		return
	}
	top := w.index.OffsetOf(index)
	bottom := top + w.index.HeightOf(index)
	switch {
	case top < w.viewport.ScrollOffset:
		w.OnScroll(top)
	case bottom > w.viewport.Bottom():
		w.OnScroll(min(top, bottom-w.viewport.Height))
	}
}

// OnResize updates the viewport size from the container's client size.
func (w *Window[T]) OnResize(width, height int) {
	if w.closed {
		return
	}
	w.width = max(0, width)
	w.viewport.Height = max(0, height)
	w.clampScroll()
}

// OnItemsChanged replaces the item list. Measured heights of items whose key
// is still present are kept.
func (w *Window[T]) OnItemsChanged(items []T) {
	if w.closed {
		return
	}
	w.items = items
	w.resolveKeys()
	if w.measured != nil {
		w.measured.SetKeys(w.keys)
	} else {
		w.uniform.SetCount(len(items))
	}
	w.clampScroll()
}

// Measure reports the rendered height of the item at index and returns
// whether the layout changed. Uniform windows ignore measurements. A
// negative height means the read failed and keeps the last known height.
func (w *Window[T]) Measure(index, height int) bool {
	if w.closed || w.measured == nil {
		return false
	}
	if !w.measured.Measure(index, height) {
		return false
	}
	w.clampScroll()
	return true
}

// Close tears the window down. Events received afterwards are ignored.
func (w *Window[T]) Close() {
	w.closed = true
}

// Closed reports whether Close was called.
func (w *Window[T]) Closed() bool {
	return w.closed
}

// Range returns the inclusive range of items to render.
func (w *Window[T]) Range() Range {
	return Resolve(w.index, w.viewport, w.overscan)
}

// Visible returns the items in Range with their offsets.
func (w *Window[T]) Visible() []Placement[T] {
	r := w.Range()
	placements := make([]Placement[T], 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		placements = append(placements, w.placement(i))
	}
	return placements
}

func (w *Window[T]) placement(i int) Placement[T] {
	p := Placement[T]{
		Item:   w.items[i],
		Index:  i,
		Key:    w.keys[i],
		Offset: w.index.OffsetOf(i),
		Height: w.index.HeightOf(i),
	}
	if p.Key == "" {
		p.Key = "#" + strconv.Itoa(i)
		p.Positional = true
	}
	return p
}

// Placement returns the placement of the item at index.
func (w *Window[T]) Placement(index int) (Placement[T], bool) {
	if index < 0 || index >= len(w.items) {
		return Placement[T]{}, false
	}
	return w.placement(index), true
}

// IndexOf returns the index of the item with key, or ItemNotFound. Items
// identified by position have no key and are never found.
func (w *Window[T]) IndexOf(key string) int {
	if key == "" {
		return ItemNotFound
	}
	for i, k := range w.keys {
		if k == key {
			return i
		}
	}
	return ItemNotFound
}

// Index exposes the position index.
func (w *Window[T]) Index() PositionIndex {
	return w.index
}

func (w *Window[T]) Items() []T {
	return w.items
}

func (w *Window[T]) Len() int {
	return len(w.items)
}

// Empty reports whether there is nothing to render. Callers show an empty
// placeholder instead of the scroll region.
func (w *Window[T]) Empty() bool {
	return len(w.items) == 0
}

func (w *Window[T]) TotalHeight() int {
	return w.index.TotalHeight()
}

func (w *Window[T]) ScrollOffset() int {
	return w.viewport.ScrollOffset
}

func (w *Window[T]) Viewport() Viewport {
	return w.viewport
}

func (w *Window[T]) Width() int {
	return w.width
}

// AtBottom reports whether the viewport shows the end of the content.
func (w *Window[T]) AtBottom() bool {
	return w.viewport.ScrollOffset >= w.maxScroll()
}
