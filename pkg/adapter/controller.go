package adapter

import (
	"fmt"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
	"github.com/go-drift/listdiff/pkg/listview"
)

// Controller is the data source and delegate of one list surface.
//
// Typical use:
//
//	c := adapter.NewController[diff.Item, diff.Item]()
//	adapter.Register(c.Cells, "row", func(cell adapter.Cell, m diff.Item) {
//	    cell.(*RowCell).Title = m.Value
//	})
//	c.Events.On(adapter.EventSelect, func(ev adapter.Event) { open(ev.Model) })
//	c.Attach(surface)
//	c.SetSections(sections)
//
// The zero value is usable: the registries are allocated on first use.
// Register binders on a zero Controller through [Controller.Registry].
//
// A Controller must only be used from the goroutine that owns its surface.
type Controller[M diff.Differentiable[M], E diff.Differentiable[E]] struct {
	// Cells maps element types to cell binders.
	Cells *CellRegistry
	// Reuse tracks reuse identifiers already registered with the surface.
	Reuse *ReuseRegistry
	// Events holds the interaction handlers.
	Events Events
	// Animations is passed to every reload.
	Animations listview.AnimationPolicy
	// MaxChanges, when positive, abandons animated updates for any stage with
	// more operations and reloads the surface instead.
	MaxChanges int
	// Interrupt, when set, takes precedence over MaxChanges.
	Interrupt func(diff.Changeset[M, E]) bool
	// RegisterReuseID registers a reuse identifier with the surface. It is
	// called at most once per identifier.
	RegisterReuseID func(id string)

	surface  listview.Surface
	sections []diff.Section[M, E]
}

var _ listview.DataSource = (*Controller[diff.Item, diff.Item])(nil)

// NewController returns a Controller with empty registries and no surface.
func NewController[M diff.Differentiable[M], E diff.Differentiable[E]]() *Controller[M, E] {
	return &Controller[M, E]{
		Cells:      NewCellRegistry(),
		Reuse:      NewReuseRegistry(),
		Animations: listview.UniformAnimation(listview.AnimationAutomatic),
	}
}

// Registry returns the cell registry, allocating it if Cells is nil.
func (c *Controller[M, E]) Registry() *CellRegistry {
	if c.Cells == nil {
		c.Cells = NewCellRegistry()
	}
	return c.Cells
}

// Attach sets the surface this controller drives.
func (c *Controller[M, E]) Attach(surface listview.Surface) {
	c.surface = surface
}

// Sections returns the current backing snapshot. Callers must not modify it.
func (c *Controller[M, E]) Sections() []diff.Section[M, E] {
	return c.sections
}

// SetSections diffs the current snapshot against next and applies the
// result to the attached surface. Without a surface the snapshot is replaced
// directly.
func (c *Controller[M, E]) SetSections(next []diff.Section[M, E]) {
	if c.surface == nil {
		c.sections = next
		return
	}
	staged := diff.Diff(c.sections, next)
	if len(staged) == 0 {
		c.sections = next
		return
	}
	interrupt := c.Interrupt
	if interrupt == nil {
		interrupt = listview.InterruptAbove[M, E](c.MaxChanges)
	}
	listview.Reload(c.surface, staged, c.Animations, interrupt, c.setData)
}

func (c *Controller[M, E]) setData(data []diff.Section[M, E]) {
	c.sections = data
}

func (c *Controller[M, E]) NumberOfSections() int {
	return len(c.sections)
}

func (c *Controller[M, E]) NumberOfElements(section int) int {
	return len(c.sections[section].Elements)
}

func (c *Controller[M, E]) SectionValue(section int) any {
	return c.sections[section].Model
}

func (c *Controller[M, E]) ElementValue(path diff.IndexPath) any {
	return c.sections[path.Section].Elements[path.Element]
}

// Element returns the element at path.
func (c *Controller[M, E]) Element(path diff.IndexPath) (E, error) {
	var zero E
	if path.Section < 0 || path.Section >= len(c.sections) {
		return zero, outOfBounds("adapter.Controller.Element", path)
	}
	elements := c.sections[path.Section].Elements
	if path.Element < 0 || path.Element >= len(elements) {
		return zero, outOfBounds("adapter.Controller.Element", path)
	}
	return elements[path.Element], nil
}

// Cell dequeues and binds the cell for the element at path. dequeue receives
// the reuse identifier registered for the element's type; the identifier is
// registered with the surface first if needed.
func (c *Controller[M, E]) Cell(path diff.IndexPath, dequeue func(reuseID string) Cell) (Cell, error) {
	model, err := c.Element(path)
	if err != nil {
		return nil, err
	}
	cells := c.Registry()
	id, err := cells.ReuseID(model)
	if err != nil {
		return nil, err
	}
	if c.Reuse == nil {
		c.Reuse = NewReuseRegistry()
	}
	c.Reuse.EnsureRegistered(id, c.RegisterReuseID)
	cell := dequeue(id)
	if err := cells.Bind(cell, model); err != nil {
		return nil, err
	}
	return cell, nil
}

// Dispatch delivers an event for the element at path. It reports whether a
// handler ran; events for paths outside the snapshot are dropped.
func (c *Controller[M, E]) Dispatch(kind EventKind, path diff.IndexPath, cell Cell) bool {
	model, err := c.Element(path)
	if err != nil {
		return false
	}
	return c.Events.Dispatch(Event{Kind: kind, Path: path, Model: model, Cell: cell})
}

// DispatchMove delivers an EventMove from one path to another.
func (c *Controller[M, E]) DispatchMove(from, to diff.IndexPath) bool {
	model, err := c.Element(from)
	if err != nil {
		return false
	}
	return c.Events.Dispatch(Event{Kind: EventMove, Path: from, Destination: to, Model: model})
}

func outOfBounds(op string, path diff.IndexPath) error {
	return &errors.Error{
		Op:   op,
		Kind: errors.KindOutOfBounds,
		Path: path.String(),
		Err:  fmt.Errorf("index path %v outside snapshot", path),
	}
}
