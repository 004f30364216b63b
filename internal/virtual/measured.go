package virtual

import "sort"

// Measured is a position index for items of differing heights. Heights start
// at an estimate and are replaced by real measurements as items render.
//
// Measurements are keyed by the caller's item key so they follow an item
// when the list is reordered. Items without a usable key are measured by
// position instead.
//
// The cumulative offset table is rebuilt lazily on the next read after a
// height or count change, starting at the lowest changed index.
type Measured struct {
	estimate int
	count    int

	// keys[i] is the identity of the item at index i; "" means positional.
	keys       []string
	keyed      map[string]int
	positional map[int]int

	// offsets[i] is the top of item i, offsets[count] is the total height.
	// Entries up to and including offsets[dirtyFrom] are valid.
	offsets   []int
	dirtyFrom int
}

// NewMeasured creates a measured index with count positional items. An
// estimate below one is clamped to one line.
func NewMeasured(count, estimate int) *Measured {
	count = max(0, count)
	return &Measured{
		estimate:   max(1, estimate),
		count:      count,
		keyed:      make(map[string]int),
		positional: make(map[int]int),
		offsets:    make([]int, count+1),
		dirtyFrom:  0,
	}
}

// Estimate returns the height assumed for items that were never measured.
func (m *Measured) Estimate() int {
	return m.estimate
}

// SetCount changes the number of items while keeping the identity table.
// New items are positional.
func (m *Measured) SetCount(count int) {
	count = max(0, count)
	if count == m.count {
		return
	}
	if count < len(m.keys) {
		m.keys = m.keys[:count]
	}
	m.resize(count)
}

// SetKeys replaces the identity table with keys, one per item. An empty key
// makes that item positional. Keyed heights whose key disappeared are
// dropped, positional heights past the new end are dropped.
func (m *Measured) SetKeys(keys []string) {
	count := len(keys)

	first := min(count, m.count)
	for i := 0; i < min(count, m.count); i++ {
		if m.keyAt(i) != keys[i] {
			first = i
			break
		}
	}

	present := make(map[string]struct{}, count)
	for _, k := range keys {
		if k != "" {
			present[k] = struct{}{}
		}
	}
	for k := range m.keyed {
		if _, ok := present[k]; !ok {
			delete(m.keyed, k)
		}
	}
	for i := range m.positional {
		if i >= count {
			delete(m.positional, i)
		}
	}

	m.keys = append(m.keys[:0], keys...)
	m.resize(count)
	m.dirtyFrom = min(m.dirtyFrom, first)
}

func (m *Measured) resize(count int) {
	old := m.count
	if len(m.offsets) != count+1 {
		offsets := make([]int, count+1)
		copy(offsets, m.offsets[:min(len(m.offsets), count+1)])
		m.offsets = offsets
	}
	m.count = count
	m.dirtyFrom = min(m.dirtyFrom, min(old, count))
}

func (m *Measured) keyAt(index int) string {
	if index < len(m.keys) {
		return m.keys[index]
	}
	return ""
}

// IsMeasured reports whether the item at index has a recorded height.
func (m *Measured) IsMeasured(index int) bool {
	if k := m.keyAt(index); k != "" {
		_, ok := m.keyed[k]
		return ok
	}
	_, ok := m.positional[index]
	return ok
}

// HeightOf implements PositionIndex.
func (m *Measured) HeightOf(index int) int {
	if k := m.keyAt(index); k != "" {
		if h, ok := m.keyed[k]; ok {
			return h
		}
		return m.estimate
	}
	if h, ok := m.positional[index]; ok {
		return h
	}
	return m.estimate
}

// Measure records the rendered height of the item at index and reports
// whether the layout changed. A negative height means the read failed; the
// last known height is kept.
func (m *Measured) Measure(index, height int) bool {
	if index < 0 || index >= m.count || height < 0 {
		return false
	}
	old := m.HeightOf(index)
	if k := m.keyAt(index); k != "" {
		m.keyed[k] = height
	} else {
		m.positional[index] = height
	}
	if old == height {
		return false
	}
	m.dirtyFrom = min(m.dirtyFrom, index)
	return true
}

func (m *Measured) ensure() {
	if m.dirtyFrom >= m.count {
		return
	}
	for i := m.dirtyFrom; i < m.count; i++ {
		m.offsets[i+1] = m.offsets[i] + m.HeightOf(i)
	}
	m.dirtyFrom = m.count
}

// Offsets returns a copy of the cumulative offset table.
func (m *Measured) Offsets() []int {
	m.ensure()
	out := make([]int, len(m.offsets))
	copy(out, m.offsets)
	return out
}

// Len implements PositionIndex.
func (m *Measured) Len() int {
	return m.count
}

// TotalHeight implements PositionIndex.
func (m *Measured) TotalHeight() int {
	m.ensure()
	return m.offsets[m.count]
}

// OffsetOf implements PositionIndex.
func (m *Measured) OffsetOf(index int) int {
	m.ensure()
	return m.offsets[min(max(0, index), m.count)]
}

// IndexAtOffset implements PositionIndex. It returns the largest index whose
// top is at or before offset, so an offset on a boundary resolves to the item
// starting there.
func (m *Measured) IndexAtOffset(offset int) int {
	if m.count == 0 {
		return ItemNotFound
	}
	m.ensure()
	offset = max(0, offset)
	i := sort.Search(m.count, func(i int) bool {
		return m.offsets[i] > offset
	}) - 1
	return min(max(0, i), m.count-1)
}

func (m *Measured) lastVisible(start int, vp Viewport) int {
	m.ensure()
	bottom := vp.Bottom()
	i := start
	for i+1 < m.count && m.offsets[i+1] < bottom {
		i++
	}
	return i
}
