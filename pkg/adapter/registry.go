// Package adapter binds snapshot models to list cells and dispatches list
// events to handlers.
//
// A [Controller] owns the backing snapshot of one list surface together with
// the registries that surface needs: a [CellRegistry] mapping model types to
// cell binders, a [ReuseRegistry] tracking which reuse identifiers have been
// registered with the surface, and an [Events] table of handlers. Calling
// [Controller.SetSections] diffs the current snapshot against the new one and
// animates the surface through the resulting stages.
package adapter

import (
	"fmt"
	"reflect"

	"github.com/go-drift/listdiff/pkg/errors"
)

// Cell is whatever view object a surface hands out for a row. Binders type
// assert it to their concrete cell type.
type Cell any

// binding is the type-erased form of a registered binder.
type binding struct {
	reuseID string
	bind    func(cell Cell, model any)
}

// CellRegistry maps model types to cell binders. The binder for a type is
// resolved once, when it is registered; Bind only looks it up. The zero
// value is an empty registry.
type CellRegistry struct {
	bindings map[reflect.Type]binding
}

// NewCellRegistry returns an empty registry.
func NewCellRegistry() *CellRegistry {
	return &CellRegistry{bindings: make(map[reflect.Type]binding)}
}

// Register installs bind as the binder for models of type T, dequeued under
// reuseID. Registering T again replaces the previous binder.
func Register[T any](r *CellRegistry, reuseID string, bind func(cell Cell, model T)) {
	if r.bindings == nil {
		r.bindings = make(map[reflect.Type]binding)
	}
	r.bindings[reflect.TypeFor[T]()] = binding{
		reuseID: reuseID,
		bind: func(cell Cell, model any) {
			bind(cell, model.(T))
		},
	}
}

// ReuseID returns the reuse identifier registered for model's type.
func (r *CellRegistry) ReuseID(model any) (string, error) {
	b, err := r.lookup("adapter.CellRegistry.ReuseID", model)
	if err != nil {
		return "", err
	}
	return b.reuseID, nil
}

// ReuseIDs returns every registered reuse identifier.
func (r *CellRegistry) ReuseIDs() []string {
	ids := make([]string, 0, len(r.bindings))
	seen := make(map[string]bool, len(r.bindings))
	for _, b := range r.bindings {
		if !seen[b.reuseID] {
			seen[b.reuseID] = true
			ids = append(ids, b.reuseID)
		}
	}
	return ids
}

// Bind configures cell for model using the binder registered for model's type.
func (r *CellRegistry) Bind(cell Cell, model any) error {
	b, err := r.lookup("adapter.CellRegistry.Bind", model)
	if err != nil {
		return err
	}
	b.bind(cell, model)
	return nil
}

func (r *CellRegistry) lookup(op string, model any) (binding, error) {
	b, ok := r.bindings[reflect.TypeOf(model)]
	if !ok {
		return binding{}, &errors.Error{
			Op:   op,
			Kind: errors.KindUnregistered,
			Err:  fmt.Errorf("no cell registered for %T", model),
		}
	}
	return b, nil
}

// ReuseRegistry records which reuse identifiers a surface already knows.
// Each controller owns one; it is never shared between surfaces. The zero
// value is an empty registry.
type ReuseRegistry struct {
	registered map[string]bool
}

// NewReuseRegistry returns an empty registry.
func NewReuseRegistry() *ReuseRegistry {
	return &ReuseRegistry{registered: make(map[string]bool)}
}

// EnsureRegistered calls register the first time id is seen and reports
// whether it did.
func (r *ReuseRegistry) EnsureRegistered(id string, register func(id string)) bool {
	if r.registered[id] {
		return false
	}
	if r.registered == nil {
		r.registered = make(map[string]bool)
	}
	r.registered[id] = true
	if register != nil {
		register(id)
	}
	return true
}

// Registered reports whether id has been registered.
func (r *ReuseRegistry) Registered(id string) bool {
	return r.registered[id]
}

// Len returns the number of registered identifiers.
func (r *ReuseRegistry) Len() int {
	return len(r.registered)
}
