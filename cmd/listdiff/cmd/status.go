package cmd

import (
	"fmt"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show resolved configuration",
		Long: `Show the configuration listdiff resolves for the current directory.

The project root is the nearest directory containing listdiff.yaml or
go.mod. Values missing from listdiff.yaml fall back to their defaults.`,
		Usage: "listdiff status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("status takes no arguments\n\nUsage: listdiff status")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = "(none, using defaults)"
	}
	module := cfg.ModulePath
	if module == "" {
		module = "(none)"
	}
	maxChanges := "unlimited"
	if cfg.MaxChanges > 0 {
		maxChanges = fmt.Sprint(cfg.MaxChanges)
	}

	w := stdout
	fmt.Fprintf(w, "Project: %s\n", cfg.Name)
	fmt.Fprintf(w, "  root:        %s\n", cfg.Root)
	fmt.Fprintf(w, "  module:      %s\n", module)
	fmt.Fprintf(w, "  config:      %s\n", configFile)
	fmt.Fprintf(w, "  version:     %s\n", cfg.Version)
	fmt.Fprintf(w, "  max changes: %s\n", maxChanges)
	fmt.Fprintf(w, "  color:       %s\n", cfg.Color)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Animations:")
	a := cfg.Animations
	for _, row := range []struct {
		kind  string
		value fmt.Stringer
	}{
		{"section delete", a.SectionDelete},
		{"section insert", a.SectionInsert},
		{"section reload", a.SectionReload},
		{"element delete", a.ElementDelete},
		{"element insert", a.ElementInsert},
		{"element reload", a.ElementReload},
	} {
		fmt.Fprintf(w, "  %-15s %s\n", row.kind+":", row.value)
	}
	if cfg.Color == config.ColorAuto {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Color is enabled when stdout is a terminal.")
	}

	return nil
}
