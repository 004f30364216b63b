package virtual

// Uniform is a position index for items that all share one row height.
// Every lookup is O(1).
type Uniform struct {
	count     int
	rowHeight int
}

// NewUniform creates a uniform index. A row height below one is clamped to
// one line.
func NewUniform(count, rowHeight int) *Uniform {
	return &Uniform{
		count:     max(0, count),
		rowHeight: max(1, rowHeight),
	}
}

// SetCount updates the number of items.
func (u *Uniform) SetCount(count int) {
	u.count = max(0, count)
}

// RowHeight returns the effective row height.
func (u *Uniform) RowHeight() int {
	return u.rowHeight
}

// Len implements PositionIndex.
func (u *Uniform) Len() int {
	return u.count
}

// TotalHeight implements PositionIndex.
func (u *Uniform) TotalHeight() int {
	return u.count * u.rowHeight
}

// OffsetOf implements PositionIndex.
func (u *Uniform) OffsetOf(index int) int {
	return max(0, index) * u.rowHeight
}

// HeightOf implements PositionIndex.
func (u *Uniform) HeightOf(int) int {
	return u.rowHeight
}

// IndexAtOffset implements PositionIndex.
func (u *Uniform) IndexAtOffset(offset int) int {
	if u.count == 0 {
		return ItemNotFound
	}
	return min(max(0, offset)/u.rowHeight, u.count-1)
}

func (u *Uniform) lastVisible(start int, vp Viewport) int {
	// ceil(height / rowHeight) rows fill the viewport
	return start + (vp.Height+u.rowHeight-1)/u.rowHeight
}
