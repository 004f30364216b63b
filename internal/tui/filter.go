package tui

import (
	"github.com/sahilm/fuzzy"
)

type filterSource []string

func (s filterSource) String(i int) string {
	return s[i]
}

func (s filterSource) Len() int {
	return len(s)
}

// filterItems returns the items whose text fuzzily matches query, in their
// original order. An empty query matches everything.
func filterItems[T any](items []T, query string, text func(T) string) []T {
	if query == "" {
		return items
	}
	src := make(filterSource, len(items))
	for i, item := range items {
		src[i] = text(item)
	}

	matches := fuzzy.FindFrom(query, src)
	keep := make([]bool, len(items))
	for _, m := range matches {
		keep[m.Index] = true
	}
	out := make([]T, 0, len(matches))
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}
	return out
}
