package classify

import "github.com/local/pagesift/internal/compose"

// Selector picks the same pages from every document. Range checks happen when
// the pages are copied.
type Selector struct {
	indices []int
}

// NewSelector returns a Selector for indices; no indices means page 0.
func NewSelector(indices []int) *Selector {
	if len(indices) == 0 {
		indices = []int{0}
	}
	return &Selector{indices: append([]int(nil), indices...)}
}

// Select returns the configured indices for doc.
func (s *Selector) Select(compose.Document) []int {
	return append([]int(nil), s.indices...)
}
