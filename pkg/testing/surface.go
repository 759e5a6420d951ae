package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
	"github.com/go-drift/listdiff/pkg/listview"
)

// VisualSection is the on-screen state of one section.
type VisualSection struct {
	Value    any
	Elements []any
}

// Surface is an in-memory [listview.Surface]. It keeps its own visual state,
// separate from the data source, and reconciles the two the way a native
// list control does at the end of each batch update.
type Surface struct {
	source      listview.DataSource
	presentable bool
	sections    []VisualSection
	trace       Trace
	batch       *batch
}

type batch struct {
	sectionDeletes []int
	sectionInserts []int
	sectionReloads []int
	sectionMoves   []diff.SectionMove
	elementDeletes []diff.IndexPath
	elementInserts []diff.IndexPath
	elementReloads []diff.IndexPath
	elementMoves   []diff.ElementMove
}

var _ listview.Surface = (*Surface)(nil)

// NewSurface returns a presentable Surface whose visual state is loaded from
// source.
func NewSurface(source listview.DataSource) *Surface {
	s := &Surface{source: source, presentable: true}
	s.load()
	return s
}

// SetPresentable attaches or detaches the surface.
func (s *Surface) SetPresentable(presentable bool) {
	s.presentable = presentable
}

// Presentable implements listview.Surface.
func (s *Surface) Presentable() bool {
	return s.presentable
}

// Trace returns the calls recorded so far.
func (s *Surface) Trace() Trace {
	return s.trace
}

// ResetTrace discards recorded calls.
func (s *Surface) ResetTrace() {
	s.trace = nil
}

// Sections returns a copy of the visual state.
func (s *Surface) Sections() []VisualSection {
	out := make([]VisualSection, len(s.sections))
	for i, sec := range s.sections {
		out[i] = VisualSection{Value: sec.Value, Elements: append([]any(nil), sec.Elements...)}
	}
	return out
}

// Consistent compares the visual state with the data source value by value.
// Native controls only compare counts; this stricter check also catches
// missed reloads and misplaced moves.
func (s *Surface) Consistent() error {
	n := s.source.NumberOfSections()
	if n != len(s.sections) {
		return &errors.InconsistencyError{Op: "Consistent", Reason: "section count mismatch", Section: -1, Expected: n, Got: len(s.sections)}
	}
	for i, sec := range s.sections {
		if want := s.source.SectionValue(i); !reflect.DeepEqual(want, sec.Value) {
			return &errors.InconsistencyError{Op: "Consistent", Reason: fmt.Sprintf("section value %v, want %v", sec.Value, want), Section: i}
		}
		m := s.source.NumberOfElements(i)
		if m != len(sec.Elements) {
			return &errors.InconsistencyError{Op: "Consistent", Reason: "element count mismatch", Section: i, Expected: m, Got: len(sec.Elements)}
		}
		for k, v := range sec.Elements {
			if want := s.source.ElementValue(diff.IndexPath{Section: i, Element: k}); !reflect.DeepEqual(want, v) {
				return &errors.InconsistencyError{Op: "Consistent", Reason: fmt.Sprintf("element %d is %v, want %v", k, v, want), Section: i}
			}
		}
	}
	return nil
}

// PerformBatchUpdates implements listview.Surface. The batch is validated and
// committed when updates returns; nested calls join the outer batch.
func (s *Surface) PerformBatchUpdates(updates func()) {
	if s.batch != nil {
		updates()
		return
	}
	s.record(Call{Op: OpBeginUpdates})
	s.batch = &batch{}
	defer func() { s.batch = nil }()
	updates()
	s.commit(s.batch)
	s.record(Call{Op: OpEndUpdates})
}

func (s *Surface) DeleteSections(sections []int, animation listview.Animation) {
	b := s.open(OpDeleteSections, len(sections))
	s.record(Call{Op: OpDeleteSections, Sections: sections, Animation: animation})
	b.sectionDeletes = append(b.sectionDeletes, sections...)
}

func (s *Surface) InsertSections(sections []int, animation listview.Animation) {
	b := s.open(OpInsertSections, len(sections))
	s.record(Call{Op: OpInsertSections, Sections: sections, Animation: animation})
	b.sectionInserts = append(b.sectionInserts, sections...)
}

func (s *Surface) ReloadSections(sections []int, animation listview.Animation) {
	b := s.open(OpReloadSections, len(sections))
	s.record(Call{Op: OpReloadSections, Sections: sections, Animation: animation})
	b.sectionReloads = append(b.sectionReloads, sections...)
}

func (s *Surface) MoveSection(from, to int) {
	b := s.open(OpMoveSection, 1)
	s.record(Call{Op: OpMoveSection, Sections: []int{from, to}})
	b.sectionMoves = append(b.sectionMoves, diff.SectionMove{From: from, To: to})
}

func (s *Surface) DeleteElements(paths []diff.IndexPath, animation listview.Animation) {
	b := s.open(OpDeleteElements, len(paths))
	s.record(Call{Op: OpDeleteElements, Paths: paths, Animation: animation})
	b.elementDeletes = append(b.elementDeletes, paths...)
}

func (s *Surface) InsertElements(paths []diff.IndexPath, animation listview.Animation) {
	b := s.open(OpInsertElements, len(paths))
	s.record(Call{Op: OpInsertElements, Paths: paths, Animation: animation})
	b.elementInserts = append(b.elementInserts, paths...)
}

func (s *Surface) ReloadElements(paths []diff.IndexPath, animation listview.Animation) {
	b := s.open(OpReloadElements, len(paths))
	s.record(Call{Op: OpReloadElements, Paths: paths, Animation: animation})
	b.elementReloads = append(b.elementReloads, paths...)
}

func (s *Surface) MoveElement(from, to diff.IndexPath) {
	b := s.open(OpMoveElement, 1)
	s.record(Call{Op: OpMoveElement, Paths: []diff.IndexPath{from, to}})
	b.elementMoves = append(b.elementMoves, diff.ElementMove{From: from, To: to})
}

// ReloadData implements listview.Surface. It is rejected inside a batch.
func (s *Surface) ReloadData() {
	if s.batch != nil {
		panic(&errors.InconsistencyError{Op: OpReloadData, Reason: "reloadData inside batch update", Section: -1})
	}
	s.record(Call{Op: OpReloadData})
	s.load()
}

func (s *Surface) open(op string, n int) *batch {
	if s.batch == nil {
		panic(&errors.InconsistencyError{Op: op, Reason: "structural call outside batch update", Section: -1})
	}
	if n == 0 {
		panic(&errors.InconsistencyError{Op: op, Reason: "empty index set", Section: -1})
	}
	return s.batch
}

func (s *Surface) record(c Call) {
	s.trace = append(s.trace, c)
}

func (s *Surface) load() {
	n := s.source.NumberOfSections()
	s.sections = make([]VisualSection, n)
	for i := range n {
		s.sections[i] = s.freshSection(i)
	}
}

func (s *Surface) freshSection(i int) VisualSection {
	m := s.source.NumberOfElements(i)
	sec := VisualSection{Value: s.source.SectionValue(i), Elements: make([]any, m)}
	for k := range m {
		sec.Elements[k] = s.source.ElementValue(diff.IndexPath{Section: i, Element: k})
	}
	return sec
}
