// Command listdiff computes staged list changesets between snapshots and
// replays them against an in-memory list surface.
package main

import (
	"os"

	"github.com/go-drift/listdiff/cmd/listdiff/cmd"
	"github.com/go-drift/listdiff/pkg/errors"
)

func main() {
	defer errors.Recover("listdiff.main")

	errors.SetHandler(&errors.LogHandler{Verbose: true})
	if err := cmd.Execute(); err != nil {
		cmd.ReportError(err)
		os.Exit(1)
	}
}
