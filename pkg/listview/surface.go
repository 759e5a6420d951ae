// Package listview applies staged changesets to a mutable list surface.
//
// A [Surface] is the on-screen list: a table or collection control that keeps
// its own visual state and reconciles it against a [DataSource] after every
// batch update. [Reload] drives a surface through a [diff.StagedChangeset]
// stage by stage, swapping the backing data in before each stage's structural
// calls so the surface's consistency check always sees matching counts.
//
// All calls must happen on the goroutine that owns the surface.
package listview

import "github.com/go-drift/listdiff/pkg/diff"

// Animation selects how a surface animates an inserted, deleted or reloaded
// row or section. Surfaces without per-operation animations ignore it.
type Animation int

const (
	// AnimationAutomatic lets the surface pick a suitable animation.
	AnimationAutomatic Animation = iota
	// AnimationNone applies the change without animating.
	AnimationNone
	// AnimationFade cross-fades the affected rows.
	AnimationFade
	// AnimationRight slides rows in from or out to the right.
	AnimationRight
	// AnimationLeft slides rows in from or out to the left.
	AnimationLeft
	// AnimationTop slides rows in from or out to the top.
	AnimationTop
	// AnimationBottom slides rows in from or out to the bottom.
	AnimationBottom
	// AnimationMiddle collapses or expands rows around their center.
	AnimationMiddle
)

func (a Animation) String() string {
	switch a {
	case AnimationNone:
		return "none"
	case AnimationFade:
		return "fade"
	case AnimationRight:
		return "right"
	case AnimationLeft:
		return "left"
	case AnimationTop:
		return "top"
	case AnimationBottom:
		return "bottom"
	case AnimationMiddle:
		return "middle"
	default:
		return "automatic"
	}
}

// ParseAnimation returns the Animation named by s, as produced by String.
func ParseAnimation(s string) (Animation, bool) {
	for a := AnimationAutomatic; a <= AnimationMiddle; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return AnimationAutomatic, false
}

// AnimationPolicy holds one animation per structural operation kind.
type AnimationPolicy struct {
	SectionDelete Animation
	SectionInsert Animation
	SectionReload Animation
	ElementDelete Animation
	ElementInsert Animation
	ElementReload Animation
}

// UniformAnimation returns a policy that uses a for every operation kind.
func UniformAnimation(a Animation) AnimationPolicy {
	return AnimationPolicy{
		SectionDelete: a,
		SectionInsert: a,
		SectionReload: a,
		ElementDelete: a,
		ElementInsert: a,
		ElementReload: a,
	}
}

// Surface is a list control that accepts batched structural updates.
//
// Index semantics follow native list controls: inside PerformBatchUpdates,
// deletions, reloads and move sources refer to the state before the batch;
// insertions and move targets refer to the state after it.
type Surface interface {
	// Presentable reports whether the surface is attached to a visible
	// hierarchy. Detached surfaces are reloaded instead of animated.
	Presentable() bool
	// PerformBatchUpdates runs updates and commits every structural call made
	// during it as one animated transaction.
	PerformBatchUpdates(updates func())

	DeleteSections(sections []int, animation Animation)
	InsertSections(sections []int, animation Animation)
	ReloadSections(sections []int, animation Animation)
	MoveSection(from, to int)

	DeleteElements(paths []diff.IndexPath, animation Animation)
	InsertElements(paths []diff.IndexPath, animation Animation)
	ReloadElements(paths []diff.IndexPath, animation Animation)
	MoveElement(from, to diff.IndexPath)

	// ReloadData discards the visual state and rebuilds it from the data source.
	ReloadData()
}

// DataSource exposes the backing store a surface renders from.
type DataSource interface {
	NumberOfSections() int
	NumberOfElements(section int) int
	// SectionValue returns the model of a section.
	SectionValue(section int) any
	// ElementValue returns the element at path.
	ElementValue(path diff.IndexPath) any
}

// CollectionSurface is a list control whose structural calls take no
// animation argument, as grid-style collection controls do.
type CollectionSurface interface {
	Presentable() bool
	PerformBatchUpdates(updates func())

	DeleteSections(sections []int)
	InsertSections(sections []int)
	ReloadSections(sections []int)
	MoveSection(from, to int)

	DeleteElements(paths []diff.IndexPath)
	InsertElements(paths []diff.IndexPath)
	ReloadElements(paths []diff.IndexPath)
	MoveElement(from, to diff.IndexPath)

	ReloadData()
}

// Collection adapts a CollectionSurface to Surface, dropping animations.
func Collection(s CollectionSurface) Surface {
	return collectionSurface{s}
}

type collectionSurface struct {
	CollectionSurface
}

func (c collectionSurface) DeleteSections(sections []int, _ Animation) {
	c.CollectionSurface.DeleteSections(sections)
}

func (c collectionSurface) InsertSections(sections []int, _ Animation) {
	c.CollectionSurface.InsertSections(sections)
}

func (c collectionSurface) ReloadSections(sections []int, _ Animation) {
	c.CollectionSurface.ReloadSections(sections)
}

func (c collectionSurface) DeleteElements(paths []diff.IndexPath, _ Animation) {
	c.CollectionSurface.DeleteElements(paths)
}

func (c collectionSurface) InsertElements(paths []diff.IndexPath, _ Animation) {
	c.CollectionSurface.InsertElements(paths)
}

func (c collectionSurface) ReloadElements(paths []diff.IndexPath, _ Animation) {
	c.CollectionSurface.ReloadElements(paths)
}
