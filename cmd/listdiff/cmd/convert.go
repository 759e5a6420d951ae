package cmd

import (
	"fmt"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/fixture"
)

func init() {
	RegisterCommand(&Command{
		Name:  "convert",
		Short: "Convert a snapshot between YAML and CBOR",
		Long: `Convert a snapshot file between encodings. The encoding of each file is
chosen from its extension: .yaml or .yml for YAML, .cbor for CBOR.

Examples:
  listdiff convert feed.yaml feed.cbor
  listdiff convert feed.cbor feed.yaml`,
		Usage: "listdiff convert <in> <out>",
		Run:   runConvert,
	})
}

func runConvert(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("input and output files are required\n\nUsage: listdiff convert <in> <out>")
	}
	if _, err := fixture.FormatOf(args[1]); err != nil {
		return err
	}

	sections, err := fixture.Load(args[0])
	if err != nil {
		return err
	}
	if err := fixture.Write(args[1], sections); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s (%d sections)\n", args[1], len(sections))
	return nil
}
