package testing

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
	"github.com/go-drift/listdiff/pkg/listview"
)

func items(ids ...string) []diff.Item {
	out := make([]diff.Item, len(ids))
	for i, id := range ids {
		out[i] = diff.Item{ID: id}
	}
	return out
}

func newStore(sections ...diff.ItemSection) *Store[diff.Item, diff.Item] {
	return &Store[diff.Item, diff.Item]{Sections: sections}
}

func sec(id string, elements ...string) diff.ItemSection {
	return diff.ItemSection{Model: diff.Item{ID: id}, Elements: items(elements...)}
}

// expectInconsistency runs fn and returns the InconsistencyError it panics with.
func expectInconsistency(t *testing.T, fn func()) (err *errors.InconsistencyError) {
	t.Helper()
	defer func() {
		r := recover()
		var ok bool
		if err, ok = r.(*errors.InconsistencyError); !ok {
			t.Fatalf("recovered %v, want *errors.InconsistencyError", r)
		}
	}()
	fn()
	return nil
}

func TestSurfaceLoadsFromDataSource(t *testing.T) {
	store := newStore(sec("s", "a", "b"))
	s := NewSurface(store)
	got := s.Sections()
	if len(got) != 1 || len(got[0].Elements) != 2 || got[0].Elements[1] != (diff.Item{ID: "b"}) {
		t.Errorf("Sections() = %+v", got)
	}
	if err := s.Consistent(); err != nil {
		t.Fatal(err)
	}
}

func TestSurfaceRejectsCallsOutsideBatch(t *testing.T) {
	s := NewSurface(newStore(sec("s", "a")))
	err := expectInconsistency(t, func() { s.DeleteSections([]int{0}, listview.AnimationNone) })
	if !strings.Contains(err.Reason, "outside batch") {
		t.Errorf("Reason = %q", err.Reason)
	}
}

func TestSurfaceRejectsEmptyIndexSet(t *testing.T) {
	s := NewSurface(newStore(sec("s", "a")))
	err := expectInconsistency(t, func() {
		s.PerformBatchUpdates(func() { s.InsertElements(nil, listview.AnimationNone) })
	})
	if err.Op != OpInsertElements {
		t.Errorf("Op = %q, want %q", err.Op, OpInsertElements)
	}
}

func TestSurfaceRejectsReloadDataInsideBatch(t *testing.T) {
	s := NewSurface(newStore(sec("s")))
	expectInconsistency(t, func() {
		s.PerformBatchUpdates(s.ReloadData)
	})
}

func TestSurfaceDetectsSectionCountMismatch(t *testing.T) {
	store := newStore(sec("a"))
	s := NewSurface(store)
	err := expectInconsistency(t, func() {
		s.PerformBatchUpdates(func() {
			// Data source still has one section.
			s.DeleteSections([]int{0}, listview.AnimationNone)
		})
	})
	if err.Expected != 0 || err.Got != 1 {
		t.Errorf("Expected/Got = %d/%d, want 0/1", err.Expected, err.Got)
	}
}

func TestSurfaceDetectsElementCountMismatch(t *testing.T) {
	store := newStore(sec("a", "x", "y"))
	s := NewSurface(store)
	err := expectInconsistency(t, func() {
		s.PerformBatchUpdates(func() {
			store.Set([]diff.ItemSection{sec("a", "x")})
			s.ReloadElements([]diff.IndexPath{{Section: 0, Element: 1}}, listview.AnimationNone)
		})
	})
	if err.Section != 0 || err.Expected != 2 || err.Got != 1 {
		t.Errorf("err = %+v", err)
	}
}

func TestSurfaceRejectsConflictingOperations(t *testing.T) {
	p := func(s, e int) diff.IndexPath { return diff.IndexPath{Section: s, Element: e} }
	tests := []struct {
		name    string
		updates func(s *Surface)
	}{
		{"delete and reload section", func(s *Surface) {
			s.DeleteSections([]int{0}, 0)
			s.ReloadSections([]int{0}, 0)
		}},
		{"move deleted section", func(s *Surface) {
			s.DeleteSections([]int{0}, 0)
			s.MoveSection(0, 1)
		}},
		{"element in deleted section", func(s *Surface) {
			s.DeleteSections([]int{0}, 0)
			s.DeleteElements([]diff.IndexPath{p(0, 0)}, 0)
		}},
		{"reload and move element", func(s *Surface) {
			s.ReloadElements([]diff.IndexPath{p(0, 0)}, 0)
			s.MoveElement(p(0, 0), p(1, 0))
		}},
		{"delete twice", func(s *Surface) {
			s.DeleteElements([]diff.IndexPath{p(0, 0), p(0, 0)}, 0)
		}},
		{"pre-update index out of bounds", func(s *Surface) {
			s.DeleteElements([]diff.IndexPath{p(0, 5)}, 0)
		}},
		{"section out of bounds", func(s *Surface) {
			s.ReloadSections([]int{7}, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface(newStore(sec("a", "x"), sec("b", "y")))
			expectInconsistency(t, func() {
				s.PerformBatchUpdates(func() { tt.updates(s) })
			})
		})
	}
}

func TestSurfaceCommitsMovesAndInserts(t *testing.T) {
	store := newStore(sec("a", "x", "y"), sec("b", "z"))
	s := NewSurface(store)

	s.PerformBatchUpdates(func() {
		store.Set([]diff.ItemSection{sec("b", "y", "z"), sec("new", "n"), sec("a", "x", "w")})
		s.InsertSections([]int{1}, listview.AnimationFade)
		s.MoveSection(0, 2)
		s.MoveSection(1, 0)
		s.InsertElements([]diff.IndexPath{{Section: 2, Element: 1}}, listview.AnimationFade)
		s.MoveElement(diff.IndexPath{Section: 0, Element: 1}, diff.IndexPath{Section: 0, Element: 0})
	})

	if err := s.Consistent(); err != nil {
		t.Fatal(err)
	}
	if got := s.Trace().StructuralCount(); got != 5 {
		t.Errorf("StructuralCount = %d, want 5", got)
	}
}

func TestSurfaceReloadedValuesAreRefreshed(t *testing.T) {
	store := newStore(sec("a", "x"))
	s := NewSurface(store)
	s.PerformBatchUpdates(func() {
		store.Set([]diff.ItemSection{{Model: diff.Item{ID: "a"}, Elements: []diff.Item{{ID: "x", Value: "2"}}}})
	})
	if s.Consistent() == nil {
		t.Fatal("content change without a reload should leave the surface stale")
	}
	s.PerformBatchUpdates(func() {
		s.ReloadElements([]diff.IndexPath{{Section: 0, Element: 0}}, listview.AnimationNone)
	})
	if err := s.Consistent(); err != nil {
		t.Fatal(err)
	}
}

func TestTraceString(t *testing.T) {
	trace := Trace{
		{Op: OpBeginUpdates},
		{Op: OpDeleteSections, Sections: []int{0, 2}, Animation: listview.AnimationFade},
		{Op: OpMoveElement, Paths: []diff.IndexPath{{Section: 1, Element: 0}, {Section: 0, Element: 3}}},
		{Op: OpEndUpdates},
		{Op: OpReloadData},
	}
	want := "beginUpdates\n  deleteSections [0 2] fade\n  moveElement [1, 0] -> [0, 3]\nendUpdates\nreloadData\n"
	if got := trace.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

type fakeT struct {
	errors []string
	fatals []string
}

func (f *fakeT) Helper()      {}
func (f *fakeT) Name() string { return "TestFake" }
func (f *fakeT) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}
func (f *fakeT) Fatalf(format string, args ...any) {
	f.fatals = append(f.fatals, fmt.Sprintf(format, args...))
}

func TestTraceMatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "case.trace")
	trace := Trace{{Op: OpBeginUpdates}, {Op: OpInsertSections, Sections: []int{0}}, {Op: OpEndUpdates}}

	missing := &fakeT{}
	trace.MatchesFile(missing, path)
	if len(missing.fatals) != 1 || !strings.Contains(missing.fatals[0], "LISTDIFF_UPDATE_TRACES=1") {
		t.Errorf("missing file fatals = %v", missing.fatals)
	}

	if err := trace.UpdateFile(path); err != nil {
		t.Fatal(err)
	}
	ok := &fakeT{}
	trace.MatchesFile(ok, path)
	if len(ok.errors)+len(ok.fatals) != 0 {
		t.Errorf("unexpected failures: %v %v", ok.errors, ok.fatals)
	}

	changed := append(Trace{}, trace...)
	changed[1].Sections = []int{1}
	mismatch := &fakeT{}
	changed.MatchesFile(mismatch, path)
	if len(mismatch.errors) != 1 {
		t.Fatalf("mismatch errors = %v", mismatch.errors)
	}
	if !strings.Contains(mismatch.errors[0], "-  insertSections [0]") || !strings.Contains(mismatch.errors[0], "+  insertSections [1]") {
		t.Errorf("diff output = %s", mismatch.errors[0])
	}
}

func TestTraceDiff(t *testing.T) {
	trace := Trace{{Op: OpBeginUpdates}, {Op: OpReloadData}, {Op: OpEndUpdates}}
	if d := trace.Diff(trace.String()); d != "" {
		t.Errorf("Diff of identical text = %q", d)
	}
	d := trace.Diff("reloadData\n")
	if !strings.HasPrefix(d, "--- expected\n+++ actual\n") || !strings.Contains(d, "+beginUpdates\n") {
		t.Errorf("Diff = %q", d)
	}
}

func TestTraceUpdateEnv(t *testing.T) {
	t.Setenv("LISTDIFF_UPDATE_TRACES", "1")
	path := filepath.Join(t.TempDir(), "new.trace")
	Trace{{Op: OpReloadData}}.MatchesFile(t, path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "reloadData\n" {
		t.Errorf("file = %q", data)
	}
}

func TestConsistentReportsMismatch(t *testing.T) {
	store := newStore(sec("a", "x"))
	s := NewSurface(store)
	store.Sections = nil
	err := s.Consistent()
	var inc *errors.InconsistencyError
	if !stderrors.As(err, &inc) || inc.Expected != 0 || inc.Got != 1 {
		t.Errorf("Consistent() = %v", err)
	}
}
