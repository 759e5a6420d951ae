package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/fixture"
	"github.com/go-drift/listdiff/cmd/listdiff/internal/preview"
	"github.com/go-drift/listdiff/pkg/diff"
)

func init() {
	RegisterCommand(&Command{
		Name:  "preview",
		Short: "Render a snapshot to a PNG image",
		Long: `Render a snapshot as a grouped list to a PNG image.

With --against, rows that changed relative to the older snapshot are
marked with a colored stripe: green for inserted, blue for moved and
orange for reloaded sections.

Flags:
  --against FILE   Mark changes relative to this snapshot
  -o, --out FILE   Output path (default: snapshot name with .png)
  --width N        Image width in pixels (default: 360)`,
		Usage: "listdiff preview <snapshot> [--against <old>] [-o <file>]",
		Run:   runPreview,
	})
}

func runPreview(args []string) error {
	var snapshot, against, out string
	width := 0
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--against", "-o", "--out", "--width":
			value, err := requireValue(args, i)
			if err != nil {
				return err
			}
			i++
			switch arg {
			case "--against":
				against = value
			case "--width":
				n, err := strconv.Atoi(value)
				if err != nil || n <= 0 {
					return fmt.Errorf("--width requires a positive integer, got %q", value)
				}
				width = n
			default:
				out = value
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unknown flag: %s", arg)
			}
			if snapshot != "" {
				return fmt.Errorf("only one snapshot can be rendered\n\nUsage: listdiff preview <snapshot>")
			}
			snapshot = arg
		}
	}
	if snapshot == "" {
		return fmt.Errorf("snapshot is required\n\nUsage: listdiff preview <snapshot>")
	}
	if out == "" {
		out = strings.TrimSuffix(snapshot, filepath.Ext(snapshot)) + ".png"
	}

	sections, err := fixture.Load(snapshot)
	if err != nil {
		return err
	}

	opts := preview.Options{Width: width}
	if against != "" {
		old, err := fixture.Load(against)
		if err != nil {
			return err
		}
		opts.Marks = preview.MarksFrom(diff.Diff(old, sections))
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := preview.WritePNG(f, preview.Render(sections, opts)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s\n", out)
	return nil
}
