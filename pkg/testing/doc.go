// Package testing provides an in-memory list surface for testing code that
// drives [listview.Surface].
//
// # Quick Start
//
// Back a Surface with a data source, drive it, and check that the visual
// state still matches the data:
//
//	func TestReload(t *testing.T) {
//	    store := &listtest.Store[diff.Item, diff.Item]{Sections: old}
//	    surface := listtest.NewSurface(store)
//
//	    listview.Reload(surface, diff.Diff(old, next), listview.UniformAnimation(listview.AnimationFade), nil, store.Set)
//
//	    if err := surface.Consistent(); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// The Surface enforces the same rules a native list control does: structural
// calls only inside PerformBatchUpdates, indices within bounds of the pre- or
// post-update state, and section and element counts that agree with the data
// source once the batch ends. A violation panics with an
// [errors.InconsistencyError].
//
// # Trace Testing
//
// Every call is recorded. Compare the trace against a golden file:
//
//	surface.Trace().MatchesFile(t, "testdata/swap.trace")
//
// Update golden files with:
//
//	LISTDIFF_UPDATE_TRACES=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import listtest "github.com/go-drift/listdiff/pkg/testing"
package testing
