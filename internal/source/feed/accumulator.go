package feed

// DefaultMaxRecords bounds the number of records kept in a snapshot.
const DefaultMaxRecords = 5000

// Accumulator keeps the most recent records of a feed in arrival order.
// A record whose key was already seen replaces the earlier one in place.
type Accumulator struct {
	max     int
	records []Record
	index   map[string]int
}

func NewAccumulator(maxRecords int) *Accumulator {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Accumulator{
		max:   maxRecords,
		index: make(map[string]int),
	}
}

// Add upserts r and reports whether it replaced an existing record.
func (a *Accumulator) Add(r Record) bool {
	if i, ok := a.index[r.Key()]; ok {
		a.records[i] = r
		return true
	}
	a.index[r.Key()] = len(a.records)
	a.records = append(a.records, r)
	if len(a.records) > a.max {
		a.trim()
	}
	return false
}

func (a *Accumulator) trim() {
	drop := len(a.records) - a.max
	a.records = append(a.records[:0:0], a.records[drop:]...)
	clear(a.index)
	for i, r := range a.records {
		a.index[r.Key()] = i
	}
}

func (a *Accumulator) Len() int {
	return len(a.records)
}

// Snapshot returns a copy of the records, oldest first.
func (a *Accumulator) Snapshot() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}
