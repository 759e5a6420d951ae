package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/fixture"
	"github.com/go-drift/listdiff/pkg/diff"
)

func init() {
	RegisterCommand(&Command{
		Name:  "diff",
		Short: "Print the staged changeset between two snapshots",
		Long: `Print the staged changeset that turns snapshot OLD into snapshot NEW.

Each stage is one batch update a list surface can apply safely. Stages are
printed in order, and within a stage operations are listed in the order
they are issued: section deletes, inserts, reloads and moves, then element
deletes, inserts, reloads and moves.

Snapshots are YAML (.yaml, .yml) or CBOR (.cbor) files.

Flags:
  --summary    Print only the number of changes and stages`,
		Usage: "listdiff diff <old> <new> [--summary]",
		Run:   runDiff,
	})
}

func runDiff(args []string) error {
	var paths []string
	summary := false
	for _, arg := range args {
		switch {
		case arg == "--summary":
			summary = true
		case strings.HasPrefix(arg, "--"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			paths = append(paths, arg)
		}
	}
	if len(paths) != 2 {
		return fmt.Errorf("two snapshots are required\n\nUsage: listdiff diff <old> <new>")
	}

	if _, err := loadConfig(); err != nil {
		return err
	}

	old, err := fixture.Load(paths[0])
	if err != nil {
		return err
	}
	next, err := fixture.Load(paths[1])
	if err != nil {
		return err
	}

	staged := diff.Diff(old, next)
	if !summary {
		writeStaged(stdout, staged)
	}
	fmt.Fprintln(stdout, summarize(staged))
	return nil
}

func summarize[M diff.Differentiable[M], E diff.Differentiable[E]](staged diff.StagedChangeset[M, E]) string {
	if len(staged) == 0 {
		return "no changes"
	}
	return fmt.Sprintf("%s in %s", plural(staged.ChangeCount(), "change"), plural(len(staged), "stage"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// palette colors operations by kind. Colors are disabled globally through
// color.NoColor.
type palette struct {
	header, delete, insert, reload, move func(a ...any) string
}

func newPalette() palette {
	return palette{
		header: color.New(color.Bold).SprintFunc(),
		delete: color.New(color.FgRed).SprintFunc(),
		insert: color.New(color.FgGreen).SprintFunc(),
		reload: color.New(color.FgYellow).SprintFunc(),
		move:   color.New(color.FgCyan).SprintFunc(),
	}
}

func writeStaged[M diff.Differentiable[M], E diff.Differentiable[E]](w io.Writer, staged diff.StagedChangeset[M, E]) {
	p := newPalette()
	for i, c := range staged {
		fmt.Fprintln(w, p.header(fmt.Sprintf("stage %d/%d: %s", i+1, len(staged), plural(c.ChangeCount(), "change"))))
		for _, line := range changesetLines(c, p) {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func changesetLines[M diff.Differentiable[M], E diff.Differentiable[E]](c diff.Changeset[M, E], p palette) []string {
	var lines []string
	for _, s := range c.SectionDeleted {
		lines = append(lines, p.delete(fmt.Sprintf("delete section %d", s)))
	}
	for _, s := range c.SectionInserted {
		lines = append(lines, p.insert(fmt.Sprintf("insert section %d", s)))
	}
	for _, s := range c.SectionUpdated {
		lines = append(lines, p.reload(fmt.Sprintf("reload section %d", s)))
	}
	for _, m := range c.SectionMoved {
		lines = append(lines, p.move(fmt.Sprintf("move section %d -> %d", m.From, m.To)))
	}
	for _, path := range c.ElementDeleted {
		lines = append(lines, p.delete(fmt.Sprintf("delete element %v", path)))
	}
	for _, path := range c.ElementInserted {
		lines = append(lines, p.insert(fmt.Sprintf("insert element %v", path)))
	}
	for _, path := range c.ElementUpdated {
		lines = append(lines, p.reload(fmt.Sprintf("reload element %v", path)))
	}
	for _, m := range c.ElementMoved {
		lines = append(lines, p.move(fmt.Sprintf("move element %v -> %v", m.From, m.To)))
	}
	return lines
}
