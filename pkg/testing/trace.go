package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/listview"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Surface call names, as they appear in a Trace.
const (
	OpBeginUpdates   = "beginUpdates"
	OpEndUpdates     = "endUpdates"
	OpDeleteSections = "deleteSections"
	OpInsertSections = "insertSections"
	OpReloadSections = "reloadSections"
	OpMoveSection    = "moveSection"
	OpDeleteElements = "deleteElements"
	OpInsertElements = "insertElements"
	OpReloadElements = "reloadElements"
	OpMoveElement    = "moveElement"
	OpReloadData     = "reloadData"
)

// Call is one recorded surface call. Moves store the source and target in
// Sections or Paths, in that order.
type Call struct {
	Op        string
	Sections  []int
	Paths     []diff.IndexPath
	Animation listview.Animation
}

func (c Call) String() string {
	switch c.Op {
	case OpMoveSection:
		return fmt.Sprintf("%s %d -> %d", c.Op, c.Sections[0], c.Sections[1])
	case OpMoveElement:
		return fmt.Sprintf("%s %v -> %v", c.Op, c.Paths[0], c.Paths[1])
	case OpDeleteSections, OpInsertSections, OpReloadSections:
		return fmt.Sprintf("%s %v %s", c.Op, c.Sections, c.Animation)
	case OpDeleteElements, OpInsertElements, OpReloadElements:
		parts := make([]string, len(c.Paths))
		for i, p := range c.Paths {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s {%s} %s", c.Op, strings.Join(parts, " "), c.Animation)
	default:
		return c.Op
	}
}

// Structural reports whether the call mutates the visual state incrementally.
func (c Call) Structural() bool {
	switch c.Op {
	case OpBeginUpdates, OpEndUpdates, OpReloadData:
		return false
	}
	return true
}

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Trace is the ordered list of calls a Surface received.
type Trace []Call

// Count returns how many calls named op were recorded.
func (t Trace) Count(op string) int {
	n := 0
	for _, c := range t {
		if c.Op == op {
			n++
		}
	}
	return n
}

// StructuralCount returns the number of structural calls.
func (t Trace) StructuralCount() int {
	n := 0
	for _, c := range t {
		if c.Structural() {
			n++
		}
	}
	return n
}

// Ops returns the call names in order.
func (t Trace) Ops() []string {
	ops := make([]string, len(t))
	for i, c := range t {
		ops[i] = c.Op
	}
	return ops
}

// String renders one call per line, indenting calls made inside a batch.
func (t Trace) String() string {
	var sb strings.Builder
	depth := 0
	for _, c := range t {
		if c.Op == OpEndUpdates && depth > 0 {
			depth--
		}
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(c.String())
		sb.WriteByte('\n')
		if c.Op == OpBeginUpdates {
			depth++
		}
	}
	return sb.String()
}

// MatchesFile compares this trace against a golden file. On mismatch it
// reports a line diff and instructions for updating. When
// LISTDIFF_UPDATE_TRACES=1 is set, the file is silently updated instead.
func (t Trace) MatchesFile(tt TestingT, path string) {
	tt.Helper()

	if os.Getenv("LISTDIFF_UPDATE_TRACES") == "1" {
		if err := t.UpdateFile(path); err != nil {
			tt.Fatalf("failed to update trace: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			tt.Fatalf("trace file missing: %s\n\nTo create: LISTDIFF_UPDATE_TRACES=1 go test -run %s", path, tt.Name())
			return
		}
		tt.Fatalf("failed to load trace: %v", err)
		return
	}

	if d := t.Diff(string(expected)); d != "" {
		tt.Errorf("trace mismatch: %s\n%s\nTo update: LISTDIFF_UPDATE_TRACES=1 go test -run %s", path, d, tt.Name())
	}
}

// Diff returns a line diff of the rendered trace against expected, or ""
// when they match.
func (t Trace) Diff(expected string) string {
	return lineDiff(expected, t.String())
}

// UpdateFile writes this trace to path, creating directories as needed.
func (t Trace) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(t.String()), 0o644)
}

// lineDiff returns a line-oriented diff of expected against actual, or ""
// when they are equal.
func lineDiff(expected, actual string) string {
	if expected == actual {
		return ""
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	sb.WriteString("--- expected\n+++ actual\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "-"
		case diffpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
