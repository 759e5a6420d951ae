package adapter

import "github.com/go-drift/listdiff/pkg/diff"

// EventKind identifies a list interaction.
type EventKind int

const (
	EventSelect EventKind = iota
	EventDeselect
	EventHighlight
	EventUnhighlight
	EventWillDisplay
	EventDidEndDisplay
	EventDelete
	EventMove
	EventAccessory
)

func (k EventKind) String() string {
	switch k {
	case EventSelect:
		return "select"
	case EventDeselect:
		return "deselect"
	case EventHighlight:
		return "highlight"
	case EventUnhighlight:
		return "unhighlight"
	case EventWillDisplay:
		return "willDisplay"
	case EventDidEndDisplay:
		return "didEndDisplay"
	case EventDelete:
		return "delete"
	case EventMove:
		return "move"
	case EventAccessory:
		return "accessory"
	default:
		return "unknown"
	}
}

// Event describes one interaction with an element.
type Event struct {
	Kind EventKind
	Path diff.IndexPath
	// Destination is the target path of an EventMove.
	Destination diff.IndexPath
	// Model is the element at Path.
	Model any
	// Cell is the cell displaying the element, when one exists.
	Cell Cell
}

// Handler handles an Event.
type Handler func(Event)

// Events maps event kinds to handlers. Kinds without a handler are ignored.
// The zero value is ready to use.
type Events struct {
	handlers map[EventKind]Handler
}

// On sets the handler for kind, replacing any previous one.
func (e *Events) On(kind EventKind, h Handler) {
	if e.handlers == nil {
		e.handlers = make(map[EventKind]Handler)
	}
	e.handlers[kind] = h
}

// Off removes the handler for kind.
func (e *Events) Off(kind EventKind) {
	delete(e.handlers, kind)
}

// Handles reports whether a handler is set for kind.
func (e *Events) Handles(kind EventKind) bool {
	_, ok := e.handlers[kind]
	return ok
}

// Dispatch calls the handler for ev.Kind, if any, and reports whether one ran.
func (e *Events) Dispatch(ev Event) bool {
	h, ok := e.handlers[ev.Kind]
	if !ok || h == nil {
		return false
	}
	h(ev)
	return true
}
