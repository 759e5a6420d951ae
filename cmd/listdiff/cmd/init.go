package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/config"
	"github.com/go-drift/listdiff/cmd/listdiff/internal/templates"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Create listdiff.yaml and example snapshots",
		Long: `Create a listdiff project in a directory.

This command creates:
  - listdiff.yaml with the default settings
  - snapshots/old.yaml and snapshots/new.yaml to try diff and apply on

The directory is created if needed. Existing files are never overwritten.
The project name is derived from the directory basename unless --name is
given.

Examples:
  listdiff init feed
  listdiff init ./lists/settings --name settings`,
		Usage: "listdiff init <directory> [--name NAME]",
		Run:   runInit,
	})
}

func runInit(args []string) error {
	var raw, name string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name":
			value, err := requireValue(args, i)
			if err != nil {
				return err
			}
			name = value
			i++
		default:
			if strings.HasPrefix(args[i], "--") {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
			raw = args[i]
		}
	}
	if raw == "" {
		return fmt.Errorf("directory is required\n\nUsage: listdiff init <directory>")
	}
	if strings.HasPrefix(raw, "~") {
		return fmt.Errorf("tilde (~) is not expanded by listdiff; use an absolute path or $HOME instead")
	}

	dir := filepath.Clean(raw)
	if err := validateDirectory(dir); err != nil {
		return err
	}

	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		name = filepath.Base(abs)
	}
	if err := validateProjectName(name); err != nil {
		return fmt.Errorf("invalid project name %q: %w", name, err)
	}

	fmt.Fprintf(stdout, "Creating listdiff project: %s\n", name)
	if err := scaffoldProject(dir, templates.InitData{Name: name, Version: config.CurrentVersion}); err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Next steps:\n")
	fmt.Fprintf(stdout, "  cd %s\n", dir)
	fmt.Fprintf(stdout, "  listdiff diff snapshots/old.yaml snapshots/new.yaml\n")
	fmt.Fprintf(stdout, "  listdiff apply snapshots/old.yaml snapshots/new.yaml\n")
	return nil
}

// scaffoldProject writes the init templates into dir. Files created before a
// failure are removed again.
func scaffoldProject(dir string, data templates.InitData) error {
	files := templates.InitFiles()
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f.Dest)); err == nil {
			return fmt.Errorf("%s already exists", filepath.Join(dir, f.Dest))
		}
	}

	var created []string
	for _, f := range files {
		path, err := writeInitTemplate(dir, f, data)
		if err != nil {
			for _, p := range created {
				os.Remove(p)
			}
			return err
		}
		created = append(created, path)
		fmt.Fprintf(stdout, "  Created %s\n", f.Dest)
	}
	return nil
}

func writeInitTemplate(projectDir string, f templates.InitFile, data templates.InitData) (string, error) {
	content, err := templates.Render(f.Template, data)
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", f.Template, err)
	}

	destPath := filepath.Join(projectDir, f.Dest)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(destPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Dest, err)
	}
	return destPath, nil
}

// validateDirectory rejects directory paths that would be dangerous to write
// into: filesystem roots (/, C:\), the parent directory and root-level
// absolute paths (e.g. /etc, C:\Users). The current directory is allowed.
func validateDirectory(dir string) error {
	switch dir {
	case "", "/", "..":
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if isVolumeRoot(dir) {
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if filepath.IsAbs(dir) && isVolumeRoot(filepath.Dir(dir)) {
		return fmt.Errorf("refusing to create project at root-level path %q", dir)
	}
	return nil
}

// isVolumeRoot reports whether dir is a filesystem root. On Unix this is "/",
// on Windows this covers drive roots like "C:\" and the bare root "\".
func isVolumeRoot(dir string) bool {
	return dir == filepath.VolumeName(dir)+string(filepath.Separator)
}

var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// validateProjectName checks that a project name is a valid identifier:
// starts with a letter, contains only letters, digits, underscores, and
// hyphens.
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("project name cannot start with a dot")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("project name cannot start with a hyphen")
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("project name must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}
