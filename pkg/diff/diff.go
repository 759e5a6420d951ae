package diff

import "sort"

// Diff computes the staged changeset that turns source into target.
//
// Stages are emitted in this order, and empty stages are omitted:
//
//  1. element updates, at source positions
//  2. section deletions and element deletions, at source positions
//  3. section insertions (target indices) and section moves
//  4. element insertions (target paths) and element moves
//  5. section updates, at target indices
//
// Sections and elements are matched by DiffID; duplicate IDs pair up in order
// of occurrence. Elements belonging to a deleted section are removed with it,
// and elements of an inserted section arrive with it, so neither produces an
// element-level operation. An element may move between two sections that both
// exist before and after the update.
//
// DiffID values must be comparable; a non-comparable DiffID panics.
func Diff[M Differentiable[M], E Differentiable[E]](source, target []Section[M, E]) StagedChangeset[M, E] {
	d := newDiffer(source, target)
	var staged StagedChangeset[M, E]
	for _, stage := range []Changeset[M, E]{
		d.updateStage(),
		d.deleteStage(),
		d.sectionStage(),
		d.elementStage(),
		d.sectionUpdateStage(),
	} {
		if stage.HasChanges() {
			staged = append(staged, stage)
		}
	}
	return staged
}

var unmatched = IndexPath{Section: -1, Element: -1}

type differ[M Differentiable[M], E Differentiable[E]] struct {
	source []Section[M, E]
	target []Section[M, E]

	// sectionTarget[i] is the target index of source section i, or -1.
	sectionTarget []int
	// sectionSource[j] is the source index of target section j, or -1.
	sectionSource []int

	// elementTarget[i][k] is the target path of source element (i, k).
	// It is nil for deleted sections.
	elementTarget [][]IndexPath
	// elementSource[j][k] is the source path of target element (j, k).
	// It is nil for inserted sections.
	elementSource [][]IndexPath

	// survivingIndex[i] is the index of source section i once deletions have
	// been applied, or -1.
	survivingIndex []int
	// survivingElement[i][k] is the index of source element (i, k) within its
	// section once deletions have been applied, or -1.
	survivingElement [][]int

	updated   []Section[M, E]
	survived  []Section[M, E]
	reordered []Section[M, E]
}

func newDiffer[M Differentiable[M], E Differentiable[E]](source, target []Section[M, E]) *differ[M, E] {
	d := &differ[M, E]{source: source, target: target}
	d.sectionTarget, d.sectionSource = matchSections(source, target)
	d.matchElements()
	return d
}

// matchSections pairs sections by model identity in order of occurrence.
func matchSections[M Differentiable[M], E Differentiable[E]](source, target []Section[M, E]) (toTarget, toSource []int) {
	queues := make(map[any][]int, len(source))
	for i, s := range source {
		id := s.Model.DiffID()
		queues[id] = append(queues[id], i)
	}

	toTarget = filled(len(source), -1)
	toSource = filled(len(target), -1)
	for j, s := range target {
		id := s.Model.DiffID()
		q := queues[id]
		if len(q) == 0 {
			continue
		}
		toTarget[q[0]] = j
		toSource[j] = q[0]
		queues[id] = q[1:]
	}
	return toTarget, toSource
}

// matchElements pairs elements of surviving source sections with elements of
// matched target sections, across section boundaries.
func (d *differ[M, E]) matchElements() {
	queues := make(map[any][]IndexPath)
	d.elementTarget = make([][]IndexPath, len(d.source))
	for i, s := range d.source {
		if d.sectionTarget[i] < 0 {
			continue
		}
		d.elementTarget[i] = make([]IndexPath, len(s.Elements))
		for k, e := range s.Elements {
			d.elementTarget[i][k] = unmatched
			id := e.DiffID()
			queues[id] = append(queues[id], IndexPath{Section: i, Element: k})
		}
	}

	d.elementSource = make([][]IndexPath, len(d.target))
	for j, s := range d.target {
		if d.sectionSource[j] < 0 {
			continue
		}
		d.elementSource[j] = make([]IndexPath, len(s.Elements))
		for k, e := range s.Elements {
			d.elementSource[j][k] = unmatched
			id := e.DiffID()
			q := queues[id]
			if len(q) == 0 {
				continue
			}
			src := q[0]
			queues[id] = q[1:]
			d.elementSource[j][k] = src
			d.elementTarget[src.Section][src.Element] = IndexPath{Section: j, Element: k}
		}
	}
}

func (d *differ[M, E]) targetElement(p IndexPath) E {
	return d.target[p.Section].Elements[p.Element]
}

// updateStage reloads matched elements whose content changed. Data keeps the
// source structure with the updated content swapped in.
func (d *differ[M, E]) updateStage() Changeset[M, E] {
	var c Changeset[M, E]
	d.updated = make([]Section[M, E], len(d.source))
	for i, s := range d.source {
		elements := make([]E, len(s.Elements))
		copy(elements, s.Elements)
		for k, dst := range d.elementTarget[i] {
			if dst == unmatched {
				continue
			}
			next := d.targetElement(dst)
			if !elements[k].IsContentEqual(next) {
				elements[k] = next
				c.ElementUpdated = append(c.ElementUpdated, IndexPath{Section: i, Element: k})
			}
		}
		d.updated[i] = Section[M, E]{Model: s.Model, Elements: elements}
	}
	c.Data = d.updated
	return c
}

// deleteStage removes deleted sections and every element that does not
// survive in a matched target section.
func (d *differ[M, E]) deleteStage() Changeset[M, E] {
	var c Changeset[M, E]
	d.survivingIndex = filled(len(d.source), -1)
	d.survivingElement = make([][]int, len(d.source))
	for i, s := range d.updated {
		if d.sectionTarget[i] < 0 {
			c.SectionDeleted = append(c.SectionDeleted, i)
			continue
		}
		d.survivingIndex[i] = len(d.survived)
		d.survivingElement[i] = filled(len(s.Elements), -1)
		var elements []E
		for k, e := range s.Elements {
			if d.elementTarget[i][k] == unmatched {
				c.ElementDeleted = append(c.ElementDeleted, IndexPath{Section: i, Element: k})
				continue
			}
			d.survivingElement[i][k] = len(elements)
			elements = append(elements, e)
		}
		d.survived = append(d.survived, Section[M, E]{Model: s.Model, Elements: elements})
	}
	c.Data = d.survived
	return c
}

// sectionStage inserts new sections and moves surviving sections into target
// order. Sections on a longest run that keeps its relative order stay put;
// only the others are moved.
func (d *differ[M, E]) sectionStage() Changeset[M, E] {
	var c Changeset[M, E]
	d.reordered = make([]Section[M, E], len(d.target))

	var order []int
	for _, i := range d.sectionSource {
		if i >= 0 {
			order = append(order, d.survivingIndex[i])
		}
	}
	keep := longestIncreasing(order)

	n := 0
	for j, s := range d.target {
		i := d.sectionSource[j]
		if i < 0 {
			c.SectionInserted = append(c.SectionInserted, j)
			d.reordered[j] = cloneSection(s)
			continue
		}
		from := d.survivingIndex[i]
		d.reordered[j] = d.survived[from]
		if !keep[n] {
			c.SectionMoved = append(c.SectionMoved, SectionMove{From: from, To: j})
		}
		n++
	}
	c.Data = d.reordered
	return c
}

// elementStage inserts new elements and moves matched elements into their
// target positions. Pre-stage paths are expressed in the reordered layout,
// where each matched section already sits at its target index. Elements
// arriving from another section always move; of the elements that stay in
// their section, only those off a longest order-preserving run move.
func (d *differ[M, E]) elementStage() Changeset[M, E] {
	var c Changeset[M, E]
	data := make([]Section[M, E], len(d.target))
	for j, s := range d.target {
		if d.sectionSource[j] < 0 {
			data[j] = d.reordered[j]
			continue
		}
		data[j] = Section[M, E]{Model: d.reordered[j].Model, Elements: cloneElements(s.Elements)}

		var order []int
		for _, src := range d.elementSource[j] {
			if src != unmatched && d.sectionTarget[src.Section] == j {
				order = append(order, d.survivingElement[src.Section][src.Element])
			}
		}
		keep := longestIncreasing(order)

		n := 0
		for k, src := range d.elementSource[j] {
			to := IndexPath{Section: j, Element: k}
			if src == unmatched {
				c.ElementInserted = append(c.ElementInserted, to)
				continue
			}
			from := IndexPath{
				Section: d.sectionTarget[src.Section],
				Element: d.survivingElement[src.Section][src.Element],
			}
			if from.Section != j {
				c.ElementMoved = append(c.ElementMoved, ElementMove{From: from, To: to})
				continue
			}
			if !keep[n] {
				c.ElementMoved = append(c.ElementMoved, ElementMove{From: from, To: to})
			}
			n++
		}
	}
	c.Data = data
	return c
}

// sectionUpdateStage reloads matched sections whose model content changed.
func (d *differ[M, E]) sectionUpdateStage() Changeset[M, E] {
	var c Changeset[M, E]
	for j, s := range d.target {
		i := d.sectionSource[j]
		if i >= 0 && !d.source[i].Model.IsContentEqual(s.Model) {
			c.SectionUpdated = append(c.SectionUpdated, j)
		}
	}
	c.Data = cloneSections(d.target)
	return c
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of seq.
func longestIncreasing(seq []int) []bool {
	keep := make([]bool, len(seq))
	prev := filled(len(seq), -1)
	// tails[l] is the index in seq of the smallest value ending an
	// increasing run of length l+1.
	var tails []int
	for i, v := range seq {
		l := sort.Search(len(tails), func(n int) bool { return seq[tails[n]] >= v })
		if l > 0 {
			prev[i] = tails[l-1]
		}
		if l == len(tails) {
			tails = append(tails, i)
		} else {
			tails[l] = i
		}
	}
	if len(tails) > 0 {
		for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
			keep[i] = true
		}
	}
	return keep
}

func filled(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func cloneElements[E any](elements []E) []E {
	if elements == nil {
		return nil
	}
	out := make([]E, len(elements))
	copy(out, elements)
	return out
}

func cloneSection[M Differentiable[M], E Differentiable[E]](s Section[M, E]) Section[M, E] {
	return Section[M, E]{Model: s.Model, Elements: cloneElements(s.Elements)}
}

func cloneSections[M Differentiable[M], E Differentiable[E]](sections []Section[M, E]) []Section[M, E] {
	out := make([]Section[M, E], len(sections))
	for i, s := range sections {
		out[i] = cloneSection(s)
	}
	return out
}
