package testing

import (
	"fmt"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
)

// slot is one position of the post-update layout while it is being built.
type slot struct {
	filled bool
	// fresh slots are read from the data source once the layout is final.
	fresh bool
	value any
	// origin is the pre-update section index of a carried section, or -1.
	origin int
}

// commit applies a batch to the visual state. Deletions, reloads and move
// sources are resolved against the pre-update state; insertions and move
// targets against the post-update state, whose counts come from the data
// source.
func (s *Surface) commit(b *batch) {
	pre := s.sections
	preCount := len(pre)
	postCount := s.source.NumberOfSections()

	deleted := indexSet(OpDeleteSections, b.sectionDeletes, preCount)
	reloaded := indexSet(OpReloadSections, b.sectionReloads, preCount)
	inserted := indexSet(OpInsertSections, b.sectionInserts, postCount)
	for i := range reloaded {
		if deleted[i] {
			fail(OpReloadSections, "section both deleted and reloaded", i)
		}
	}

	movedFrom := make(map[int]bool)
	movedTo := make(map[int]bool)
	for _, m := range b.sectionMoves {
		checkBounds(OpMoveSection, m.From, preCount, -1)
		checkBounds(OpMoveSection, m.To, postCount, -1)
		switch {
		case deleted[m.From]:
			fail(OpMoveSection, "section both deleted and moved", m.From)
		case reloaded[m.From]:
			fail(OpMoveSection, "section both reloaded and moved", m.From)
		case movedFrom[m.From]:
			fail(OpMoveSection, "section moved twice", m.From)
		case inserted[m.To] || movedTo[m.To]:
			fail(OpMoveSection, "section move targets an occupied index", m.To)
		}
		movedFrom[m.From] = true
		movedTo[m.To] = true
	}

	if want := preCount - len(deleted) + len(inserted); want != postCount {
		panic(&errors.InconsistencyError{
			Op:       OpEndUpdates,
			Reason:   "number of sections after the update must equal the number before, plus inserted, minus deleted",
			Section:  -1,
			Expected: want,
			Got:      postCount,
		})
	}

	layout := make([]slot, postCount)
	for j := range inserted {
		layout[j] = slot{filled: true, fresh: true, origin: -1}
	}
	for _, m := range b.sectionMoves {
		layout[m.To] = slot{filled: true, origin: m.From}
	}
	next := 0
	for i := range pre {
		if deleted[i] || movedFrom[i] {
			continue
		}
		for layout[next].filled {
			next++
		}
		layout[next] = slot{filled: true, origin: i, fresh: reloaded[i]}
	}

	elements := s.resolveElements(b, pre, layout, deleted, reloaded, inserted)

	post := make([]VisualSection, postCount)
	for j, sl := range layout {
		if sl.fresh {
			post[j] = s.freshSection(j)
			continue
		}
		post[j] = VisualSection{Value: pre[sl.origin].Value, Elements: elements[j]}
	}
	s.sections = post
}

func (s *Surface) resolveElements(
	b *batch,
	pre []VisualSection,
	layout []slot,
	deletedSections, reloadedSections, insertedSections map[int]bool,
) [][]any {
	// Element operations keyed by pre-update section.
	removed := make(map[diff.IndexPath]bool)
	reloads := make(map[diff.IndexPath]bool)
	checkPre := func(op string, p diff.IndexPath) {
		checkBounds(op, p.Section, len(pre), -1)
		if deletedSections[p.Section] {
			fail(op, "element in a deleted section", p.Section)
		}
		if reloadedSections[p.Section] {
			fail(op, "element in a reloaded section", p.Section)
		}
		checkBounds(op, p.Element, len(pre[p.Section].Elements), p.Section)
	}
	checkPost := func(op string, p diff.IndexPath) {
		checkBounds(op, p.Section, len(layout), -1)
		if insertedSections[p.Section] || layout[p.Section].fresh {
			fail(op, "element in an inserted or reloaded section", p.Section)
		}
	}

	for _, p := range b.elementDeletes {
		checkPre(OpDeleteElements, p)
		if removed[p] {
			fail(OpDeleteElements, fmt.Sprintf("element %v deleted twice", p), p.Section)
		}
		removed[p] = true
	}
	for _, p := range b.elementReloads {
		checkPre(OpReloadElements, p)
		if removed[p] {
			fail(OpReloadElements, fmt.Sprintf("element %v both deleted and reloaded", p), p.Section)
		}
		reloads[p] = true
	}

	targets := make(map[diff.IndexPath]bool)
	for _, p := range b.elementInserts {
		checkPost(OpInsertElements, p)
		if targets[p] {
			fail(OpInsertElements, fmt.Sprintf("element %v inserted twice", p), p.Section)
		}
		targets[p] = true
	}
	for _, m := range b.elementMoves {
		checkPre(OpMoveElement, m.From)
		checkPost(OpMoveElement, m.To)
		switch {
		case removed[m.From]:
			fail(OpMoveElement, fmt.Sprintf("element %v moved after delete or move", m.From), m.From.Section)
		case reloads[m.From]:
			fail(OpMoveElement, fmt.Sprintf("element %v both reloaded and moved", m.From), m.From.Section)
		case targets[m.To]:
			fail(OpMoveElement, fmt.Sprintf("move target %v already occupied", m.To), m.To.Section)
		}
		removed[m.From] = true
		targets[m.To] = true
	}

	out := make([][]any, len(layout))
	for j, sl := range layout {
		if sl.fresh {
			continue
		}
		count := s.source.NumberOfElements(j)
		placed := make([]slot, count)
		arrivals := 0
		for _, p := range b.elementInserts {
			if p.Section != j {
				continue
			}
			checkBounds(OpInsertElements, p.Element, count, j)
			placed[p.Element] = slot{filled: true, fresh: true}
			arrivals++
		}
		for _, m := range b.elementMoves {
			if m.To.Section != j {
				continue
			}
			checkBounds(OpMoveElement, m.To.Element, count, j)
			placed[m.To.Element] = slot{filled: true, value: pre[m.From.Section].Elements[m.From.Element]}
			arrivals++
		}

		var stayers []slot
		for k, v := range pre[sl.origin].Elements {
			p := diff.IndexPath{Section: sl.origin, Element: k}
			if removed[p] {
				continue
			}
			stayers = append(stayers, slot{filled: true, value: v, fresh: reloads[p]})
		}
		if want := len(stayers) + arrivals; want != count {
			panic(&errors.InconsistencyError{
				Op:       OpEndUpdates,
				Reason:   "number of elements after the update must equal the number before, plus inserted or moved in, minus deleted or moved out",
				Section:  j,
				Expected: want,
				Got:      count,
			})
		}

		next := 0
		for k := range placed {
			if placed[k].filled {
				continue
			}
			placed[k] = stayers[next]
			next++
		}

		values := make([]any, count)
		for k, sl := range placed {
			if sl.fresh {
				values[k] = s.source.ElementValue(diff.IndexPath{Section: j, Element: k})
			} else {
				values[k] = sl.value
			}
		}
		out[j] = values
	}
	return out
}

func indexSet(op string, indices []int, bound int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		checkBounds(op, i, bound, -1)
		if set[i] {
			fail(op, fmt.Sprintf("index %d appears twice", i), -1)
		}
		set[i] = true
	}
	return set
}

func checkBounds(op string, i, bound, section int) {
	if i < 0 || i >= bound {
		panic(&errors.InconsistencyError{
			Op:      op,
			Reason:  fmt.Sprintf("index %d out of bounds (count %d)", i, bound),
			Section: section,
		})
	}
}

func fail(op, reason string, section int) {
	panic(&errors.InconsistencyError{Op: op, Reason: reason, Section: section})
}
