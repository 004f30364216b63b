package vlist

import (
	"testing"
)

func BenchmarkListScroll(b *testing.B) {
	sizes := []int{1_000, 10_000, 100_000}
	for _, n := range sizes {
		items := createItems(n, 2)
		b.Run("uniform", func(b *testing.B) {
			l := New(items, (&renderCounter{}).render, itemKey, WithUniform(2), WithSize(80, 40))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if i%2 == 0 {
					l.MoveDown(ViewportDefaultScrollSize)
				} else {
					l.MoveUp(1)
				}
			}
		})
		b.Run("measured", func(b *testing.B) {
			l := New(items, (&renderCounter{}).render, itemKey, WithMeasured(1), WithSize(80, 40))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if i%2 == 0 {
					l.MoveDown(ViewportDefaultScrollSize)
				} else {
					l.MoveUp(1)
				}
			}
		})
	}
}

func BenchmarkListSetItems(b *testing.B) {
	items := createItems(50_000, 1)
	l := New(items, (&renderCounter{}).render, itemKey, WithMeasured(1), WithSize(80, 40))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.SetItems(items[:len(items)-i%100])
	}
}
