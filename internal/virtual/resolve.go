package virtual

// Resolve computes the inclusive range of items to render for the viewport,
// expanded by overscan items on both ends and clamped to the list bounds.
// Every item intersecting the viewport is inside the returned range.
func Resolve(index PositionIndex, vp Viewport, overscan int) Range {
	n := index.Len()
	if n == 0 {
		return Range{Start: 0, End: -1}
	}
	overscan = max(0, overscan)
	vp = vp.normalized()

	rawStart := index.IndexAtOffset(vp.ScrollOffset)
	start := max(0, rawStart-overscan)
	end := index.lastVisible(start, vp)
	end = min(n-1, end+overscan)
	return Range{Start: start, End: max(start, end)}
}
