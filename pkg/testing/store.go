package testing

import (
	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/listview"
)

// Store is a [listview.DataSource] over a snapshot, with a setData callback
// that records every snapshot it receives.
type Store[M diff.Differentiable[M], E diff.Differentiable[E]] struct {
	Sections []diff.Section[M, E]
	// Sets holds every snapshot passed to Set, in order.
	Sets [][]diff.Section[M, E]
	// OnSet, if non-nil, runs after each Set.
	OnSet func(data []diff.Section[M, E])
}

var _ listview.DataSource = (*Store[diff.Item, diff.Item])(nil)

// Set replaces the backing snapshot. Pass it to listview.Reload as setData.
func (s *Store[M, E]) Set(data []diff.Section[M, E]) {
	s.Sections = data
	s.Sets = append(s.Sets, data)
	if s.OnSet != nil {
		s.OnSet(data)
	}
}

func (s *Store[M, E]) NumberOfSections() int { return len(s.Sections) }

func (s *Store[M, E]) NumberOfElements(section int) int {
	return len(s.Sections[section].Elements)
}

func (s *Store[M, E]) SectionValue(section int) any { return s.Sections[section].Model }

func (s *Store[M, E]) ElementValue(path diff.IndexPath) any {
	return s.Sections[path.Section].Elements[path.Element]
}
