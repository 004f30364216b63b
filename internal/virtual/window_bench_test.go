package virtual

import (
	"fmt"
	"testing"
)

// BenchmarkResolve measures range resolution for growing lists. The cost
// should stay flat for uniform lists and grow with log n for measured ones.
func BenchmarkResolve(b *testing.B) {
	sizes := []int{100, 1000, 10000, 100000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Uniform_%d", size), func(b *testing.B) {
			u := NewUniform(size, 3)
			vp := Viewport{ScrollOffset: size, Height: 40}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Resolve(u, vp, DefaultOverscan)
			}
		})

		b.Run(fmt.Sprintf("Measured_%d", size), func(b *testing.B) {
			m := NewMeasured(size, 3)
			for i := 0; i < size; i += 7 {
				m.Measure(i, 5)
			}
			vp := Viewport{ScrollOffset: size, Height: 40}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Resolve(m, vp, DefaultOverscan)
			}
		})
	}
}

// BenchmarkMeasureInitialPopulation measures one screenful of measurements
// followed by a resolve, the work done per frame while a list fills in.
func BenchmarkMeasureInitialPopulation(b *testing.B) {
	for _, size := range []int{1000, 10000, 100000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			w := NewMeasuredWindow(rows(size), 4, rowKey)
			w.OnResize(80, 40)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for _, p := range w.Visible() {
					w.Measure(p.Index, 3+(i+p.Index)%4)
				}
				w.ScrollBy(40)
				if w.AtBottom() {
					w.ScrollToTop()
				}
			}
		})
	}
}
