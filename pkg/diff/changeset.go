// Package diff computes staged changesets between two sectioned snapshots.
//
// A snapshot is a slice of [Section] values. [Diff] compares an old and a new
// snapshot by identity ([Differentiable.DiffID]) and content
// ([Differentiable.IsContentEqual]) and returns a [StagedChangeset]: an ordered
// list of [Changeset] stages, each of which can be committed to a list surface
// in a single batch update without combining operations that the surface
// cannot reconcile (for example, moving and reloading the same row).
//
// Each stage carries Data, the exact snapshot the backing store must hold once
// that stage's operations are applied. The last stage's Data equals the new
// snapshot.
//
// Example:
//
//	old := []diff.Section[diff.Item, diff.Item]{
//	    diff.NewSection(diff.Item{ID: "fruit"}, diff.Item{ID: "apple"}, diff.Item{ID: "pear"}),
//	}
//	next := []diff.Section[diff.Item, diff.Item]{
//	    diff.NewSection(diff.Item{ID: "fruit"}, diff.Item{ID: "pear"}, diff.Item{ID: "plum"}),
//	}
//	staged := diff.Diff(old, next)
//	// staged[0]: ElementDeleted [0, 0]
//	// staged[1]: ElementInserted [0, 1]
package diff

import "fmt"

// Differentiable is implemented by section models and elements that can be
// diffed. DiffID must return a comparable value that stays stable for the
// lifetime of the item; IsContentEqual reports whether two items with the same
// DiffID render identically.
type Differentiable[T any] interface {
	DiffID() any
	IsContentEqual(other T) bool
}

// Section is one section of a snapshot: a model describing the section itself
// (header, footer) and its ordered elements.
type Section[M Differentiable[M], E Differentiable[E]] struct {
	Model    M
	Elements []E
}

// NewSection returns a Section with the given model and elements.
func NewSection[M Differentiable[M], E Differentiable[E]](model M, elements ...E) Section[M, E] {
	return Section[M, E]{Model: model, Elements: elements}
}

// IndexPath locates an element within a snapshot.
type IndexPath struct {
	Section int
	Element int
}

func (p IndexPath) String() string {
	return fmt.Sprintf("[%d, %d]", p.Section, p.Element)
}

// SectionMove moves the section at From (pre-update index) to To (post-update index).
type SectionMove struct {
	From int
	To   int
}

// ElementMove moves the element at From (pre-update path) to To (post-update path).
type ElementMove struct {
	From IndexPath
	To   IndexPath
}

// Changeset is one stage of a [StagedChangeset].
//
// Deleted, updated and move-source positions refer to the snapshot before the
// stage; inserted and move-target positions refer to Data.
type Changeset[M Differentiable[M], E Differentiable[E]] struct {
	// Data is the snapshot after this stage is applied.
	Data []Section[M, E]

	SectionDeleted  []int
	SectionInserted []int
	SectionUpdated  []int
	SectionMoved    []SectionMove

	ElementDeleted  []IndexPath
	ElementInserted []IndexPath
	ElementUpdated  []IndexPath
	ElementMoved    []ElementMove
}

// SectionChangeCount returns the number of section-level operations.
func (c Changeset[M, E]) SectionChangeCount() int {
	return len(c.SectionDeleted) + len(c.SectionInserted) + len(c.SectionUpdated) + len(c.SectionMoved)
}

// ElementChangeCount returns the number of element-level operations.
func (c Changeset[M, E]) ElementChangeCount() int {
	return len(c.ElementDeleted) + len(c.ElementInserted) + len(c.ElementUpdated) + len(c.ElementMoved)
}

// ChangeCount returns the total number of operations in the stage.
func (c Changeset[M, E]) ChangeCount() int {
	return c.SectionChangeCount() + c.ElementChangeCount()
}

// HasChanges reports whether the stage contains any operation.
func (c Changeset[M, E]) HasChanges() bool {
	return c.ChangeCount() > 0
}

// StagedChangeset is an ordered sequence of stages produced by [Diff].
// It is consumed once; it has no identity of its own.
type StagedChangeset[M Differentiable[M], E Differentiable[E]] []Changeset[M, E]

// Last returns the final stage. ok is false when there are no stages.
func (s StagedChangeset[M, E]) Last() (last Changeset[M, E], ok bool) {
	if len(s) == 0 {
		return last, false
	}
	return s[len(s)-1], true
}

// ChangeCount returns the total number of operations across all stages.
func (s StagedChangeset[M, E]) ChangeCount() int {
	n := 0
	for _, c := range s {
		n += c.ChangeCount()
	}
	return n
}

// Item is a string-keyed value usable as both a section model and an element.
// Two items are content-equal when all fields match.
type Item struct {
	ID    string `yaml:"id" cbor:"id"`
	Value string `yaml:"value,omitempty" cbor:"value,omitempty"`
}

func (i Item) DiffID() any { return i.ID }

func (i Item) IsContentEqual(other Item) bool { return i == other }

func (i Item) String() string {
	if i.Value == "" {
		return i.ID
	}
	return i.ID + "=" + i.Value
}

// ItemSection is a section of Items, the shape used by fixtures and the CLI.
type ItemSection = Section[Item, Item]
