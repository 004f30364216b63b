package scrollstate

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.Record("commits", 123)
		assert.Equal(t, 123, s.Read("commits"))
		assert.Equal(t, 0, s.Read("never-seen"))
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.Record("feed", 10)
		s.Record("feed", 20)
		s.Record("feed", 20)
		offset, ok := s.Lookup("feed")
		require.True(t, ok)
		assert.Equal(t, 20, offset)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("negative offsets and empty keys", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.Record("a", -5)
		assert.Equal(t, 0, s.Read("a"))
		_, ok := s.Lookup("a")
		assert.True(t, ok)

		s.Record("", 9)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("unbounded store keeps everything", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		for i := range 1000 {
			s.Record(fmt.Sprintf("list-%d", i), i)
		}
		assert.Equal(t, 1000, s.Len())
		assert.Equal(t, 0, s.Capacity())
		assert.Equal(t, 3, s.Read("list-3"))
	})

	t.Run("bounded store evicts the least recently used key", func(t *testing.T) {
		t.Parallel()
		s := New(2)
		s.Record("a", 1)
		s.Record("b", 2)
		s.Read("a")
		s.Record("c", 3)

		assert.Equal(t, 2, s.Len())
		_, ok := s.Lookup("b")
		assert.False(t, ok)
		assert.Equal(t, []string{"c", "a"}, s.Keys())
	})

	t.Run("positions keep their anchor", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.RecordPosition("feed", Position{Offset: 60, Anchor: "rec-60", Delta: 1})
		pos, ok := s.LookupPosition("feed")
		require.True(t, ok)
		assert.Equal(t, Position{Offset: 60, Anchor: "rec-60", Delta: 1}, pos)
		assert.Equal(t, 60, s.Read("feed"))

		s.Record("feed", 12)
		pos, _ = s.LookupPosition("feed")
		assert.Equal(t, Position{Offset: 12}, pos)
	})

	t.Run("delta without an anchor is dropped", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.RecordPosition("feed", Position{Offset: 4, Delta: 2})
		pos, _ := s.LookupPosition("feed")
		assert.Equal(t, Position{Offset: 4}, pos)
	})

	t.Run("forget", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		s.Record("a", 1)
		s.Forget("a")
		s.Forget("missing")
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 0, s.Read("a"))
	})

	t.Run("concurrent writers to distinct keys", func(t *testing.T) {
		t.Parallel()
		s := New(0)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 100 {
					s.Record(fmt.Sprintf("w%d", i), j)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 8, s.Len())
		assert.Equal(t, 99, s.Read("w0"))
	})
}

func TestDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	require.NotNil(t, original)
	bounded := New(3)
	SetDefault(bounded)
	assert.Same(t, bounded, Default())

	SetDefault(nil)
	assert.Same(t, bounded, Default())
}
