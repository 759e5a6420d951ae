package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/fixture"
	"github.com/go-drift/listdiff/pkg/adapter"
	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
	"github.com/go-drift/listdiff/pkg/listview"
	listtest "github.com/go-drift/listdiff/pkg/testing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "apply",
		Short: "Replay a changeset against an in-memory list surface",
		Long: `Load snapshot OLD into an in-memory list surface, switch the data to
snapshot NEW and print the calls the surface received.

The surface validates every batch update the way a native list control
does and fails on an inconsistent update. After the update, the surface
contents are compared with the data and every row is bound to a cell.

Animations and the change limit come from listdiff.yaml unless overridden.

Flags:
  --hidden            Detach the surface first; expect a single reloadData
  --max-changes N     Reload instead of animating stages above N changes
  --animation NAME    Use one animation for every operation
  --write FILE        Write the call trace to FILE
  --expect FILE       Fail unless the call trace matches FILE`,
		Usage: "listdiff apply <old> <new> [flags]",
		Run:   runApply,
	})
}

type applyOptions struct {
	old, next  string
	hidden     bool
	maxChanges int // negative keeps the configured value
	animation  string
	write      string
	expect     string
}

func parseApplyArgs(args []string) (applyOptions, error) {
	opts := applyOptions{maxChanges: -1}
	var paths []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--hidden":
			opts.hidden = true
		case "--max-changes", "--animation", "--write", "--expect":
			value, err := requireValue(args, i)
			if err != nil {
				return opts, err
			}
			i++
			if err := opts.set(arg, value); err != nil {
				return opts, err
			}
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "--") {
				if err := opts.set(name, value); err != nil {
					return opts, err
				}
				continue
			}
			if strings.HasPrefix(arg, "--") {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			paths = append(paths, arg)
		}
	}
	if len(paths) != 2 {
		return opts, fmt.Errorf("two snapshots are required\n\nUsage: listdiff apply <old> <new> [flags]")
	}
	opts.old, opts.next = paths[0], paths[1]
	return opts, nil
}

func (o *applyOptions) set(name, value string) error {
	switch name {
	case "--max-changes":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("--max-changes requires a non-negative integer, got %q", value)
		}
		o.maxChanges = n
	case "--animation":
		if _, ok := listview.ParseAnimation(value); !ok {
			return fmt.Errorf("unknown animation %q", value)
		}
		o.animation = value
	case "--write":
		o.write = value
	case "--expect":
		o.expect = value
	default:
		return fmt.Errorf("unknown flag: %s", name)
	}
	return nil
}

// rowCell stands in for a native cell.
type rowCell struct {
	reuseID string
	text    string
}

func runApply(args []string) error {
	opts, err := parseApplyArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	old, err := fixture.Load(opts.old)
	if err != nil {
		return err
	}
	next, err := fixture.Load(opts.next)
	if err != nil {
		return err
	}

	c := adapter.NewController[diff.Item, diff.Item]()
	c.Animations = cfg.Animations
	if opts.animation != "" {
		a, _ := listview.ParseAnimation(opts.animation)
		c.Animations = listview.UniformAnimation(a)
	}
	c.MaxChanges = cfg.MaxChanges
	if opts.maxChanges >= 0 {
		c.MaxChanges = opts.maxChanges
	}
	adapter.Register(c.Cells, "row", func(cell adapter.Cell, m diff.Item) {
		cell.(*rowCell).text = m.String()
	})
	c.SetSections(old)

	surface := listtest.NewSurface(c)
	surface.SetPresentable(!opts.hidden)
	c.Attach(surface)

	if err := applySections(c, next); err != nil {
		fmt.Fprint(stdout, surface.Trace().String())
		return err
	}

	trace := surface.Trace()
	fmt.Fprint(stdout, trace.String())

	if err := surface.Consistent(); err != nil {
		return &errors.Error{Op: "cmd.apply", Kind: errors.KindInconsistent, Err: err}
	}
	cells, err := bindAll(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s, %s; %s bound; surface consistent\n",
		plural(len(trace), "call"), plural(trace.StructuralCount(), "structural update"), plural(cells, "cell"))

	if opts.write != "" {
		if err := trace.UpdateFile(opts.write); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}
	if opts.expect != "" {
		expected, err := os.ReadFile(opts.expect)
		if err != nil {
			return fmt.Errorf("failed to read expected trace: %w", err)
		}
		if d := trace.Diff(string(expected)); d != "" {
			return fmt.Errorf("call trace does not match %s:\n%s", opts.expect, d)
		}
	}
	return nil
}

// applySections turns a panic raised by the surface into an error.
func applySections(c *adapter.Controller[diff.Item, diff.Item], next []diff.ItemSection) (err error) {
	defer errors.RecoverInto("cmd.apply", &err)
	c.SetSections(next)
	return nil
}

// bindAll dequeues and binds a cell for every element, as a surface would
// when scrolling through the whole list.
func bindAll(c *adapter.Controller[diff.Item, diff.Item]) (int, error) {
	bound := 0
	for s := range c.NumberOfSections() {
		for e := range c.NumberOfElements(s) {
			cell, err := c.Cell(diff.IndexPath{Section: s, Element: e}, func(id string) adapter.Cell {
				return &rowCell{reuseID: id}
			})
			if err != nil {
				return bound, err
			}
			if cell.(*rowCell).text == "" {
				return bound, fmt.Errorf("cell at [%d, %d] was not bound", s, e)
			}
			bound++
		}
	}
	return bound, nil
}
