// Package virtual implements list windowing: position indexes that map item
// indexes to line offsets, the resolver that turns a viewport into the range
// of items worth rendering, and a Window state machine that is driven by
// explicit scroll, resize, item and measurement events.
package virtual

// ItemNotFound is returned by index lookups on an empty list.
const ItemNotFound = -1

// DefaultOverscan is the number of extra items rendered on each side of the
// visible range.
const DefaultOverscan = 3

// Viewport is the geometry of the scroll container.
type Viewport struct {
	ScrollOffset int
	Height       int
}

func (v Viewport) normalized() Viewport {
	return Viewport{
		ScrollOffset: max(0, v.ScrollOffset),
		Height:       max(0, v.Height),
	}
}

// Bottom is the first line below the viewport.
func (v Viewport) Bottom() int {
	return v.ScrollOffset + v.Height
}

// Range is an inclusive range of item indexes. An empty list resolves to
// Range{Start: 0, End: -1}.
type Range struct {
	Start int
	End   int
}

// Empty reports whether the range contains no items.
func (r Range) Empty() bool {
	return r.End < r.Start
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether index falls inside the range.
func (r Range) Contains(index int) bool {
	return !r.Empty() && index >= r.Start && index <= r.End
}

// PositionIndex maps item indexes to line offsets. Implementations are
// Uniform (constant row height) and Measured (per item heights).
type PositionIndex interface {
	// Len returns the number of items.
	Len() int
	// TotalHeight returns the height of all items together.
	TotalHeight() int
	// OffsetOf returns the top line of the item at index.
	OffsetOf(index int) int
	// HeightOf returns the height of the item at index.
	HeightOf(index int) int
	// IndexAtOffset returns the item covering the given line, clamped to
	// the list bounds.
	IndexAtOffset(offset int) int

	// lastVisible returns the last index, walking from start, whose item
	// begins above the viewport bottom. The result is not clamped.
	lastVisible(start int, vp Viewport) int
}
