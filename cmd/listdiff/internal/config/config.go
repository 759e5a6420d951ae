package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/listdiff/pkg/errors"
	"github.com/go-drift/listdiff/pkg/listview"
)

// FileName is the name of the optional project configuration file.
const FileName = "listdiff.yaml"

// CurrentVersion is the configuration format version written by init.
const CurrentVersion = "v1.0.0"

// Config represents the optional listdiff.yaml configuration.
type Config struct {
	Version    string          `yaml:"version,omitempty"`
	Project    ProjectConfig   `yaml:"project"`
	Animation  AnimationConfig `yaml:"animation"`
	MaxChanges int             `yaml:"maxChanges,omitempty"`
	Color      string          `yaml:"color,omitempty"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty"`
}

// AnimationConfig selects the row animations used by apply. Default applies
// to every kind without an override.
type AnimationConfig struct {
	Default       string `yaml:"default,omitempty"`
	SectionDelete string `yaml:"sectionDelete,omitempty"`
	SectionInsert string `yaml:"sectionInsert,omitempty"`
	SectionReload string `yaml:"sectionReload,omitempty"`
	ElementDelete string `yaml:"elementDelete,omitempty"`
	ElementInsert string `yaml:"elementInsert,omitempty"`
	ElementReload string `yaml:"elementReload,omitempty"`
}

// ColorMode controls colored output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ConfigFile string // empty when no listdiff.yaml exists
	ModulePath string // empty outside a Go module
	Name       string
	Version    string
	Animations listview.AnimationPolicy
	MaxChanges int
	Color      ColorMode
}

// LoadOptional reads listdiff.yaml if present. The boolean reports whether
// the file exists.
func LoadOptional(dir string) (*Config, bool, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, false, nil
		}
		return nil, false, configError(path, fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, false, configError(path, fmt.Errorf("failed to parse %s: %w", FileName, err))
	}

	return &cfg, true, nil
}

// Resolve loads listdiff.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, found, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, FileName)

	version, err := resolveVersion(cfg.Version)
	if err != nil {
		return nil, configError(path, err)
	}

	animations, err := resolveAnimations(cfg.Animation)
	if err != nil {
		return nil, configError(path, err)
	}

	if cfg.MaxChanges < 0 {
		return nil, configError(path, fmt.Errorf("maxChanges must not be negative, got %d", cfg.MaxChanges))
	}

	color := ColorMode(strings.ToLower(strings.TrimSpace(cfg.Color)))
	switch color {
	case "":
		color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, configError(path, fmt.Errorf("color must be auto, always or never, got %q", cfg.Color))
	}

	modulePath := modulePath(dir)

	name := strings.TrimSpace(cfg.Project.Name)
	if name == "" {
		name = defaultName(modulePath, dir)
	}

	r := &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		Name:       name,
		Version:    version,
		Animations: animations,
		MaxChanges: cfg.MaxChanges,
		Color:      color,
	}
	if found {
		r.ConfigFile = path
	}
	return r, nil
}

// FindProjectRoot walks up from start to the nearest directory holding
// listdiff.yaml or go.mod. It returns start itself when neither is found.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Abs(start)
		}
		dir = parent
	}
}

func resolveVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return CurrentVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version %q is not a valid semantic version", v)
	}
	if major := semver.Major(v); major != semver.Major(CurrentVersion) {
		return "", fmt.Errorf("unsupported configuration version %s (this build reads %s.x)", v, semver.Major(CurrentVersion))
	}
	return semver.Canonical(v), nil
}

func resolveAnimations(cfg AnimationConfig) (listview.AnimationPolicy, error) {
	def, err := parseAnimation("default", cfg.Default, listview.AnimationAutomatic)
	if err != nil {
		return listview.AnimationPolicy{}, err
	}
	policy := listview.UniformAnimation(def)

	overrides := []struct {
		key   string
		value string
		dst   *listview.Animation
	}{
		{"sectionDelete", cfg.SectionDelete, &policy.SectionDelete},
		{"sectionInsert", cfg.SectionInsert, &policy.SectionInsert},
		{"sectionReload", cfg.SectionReload, &policy.SectionReload},
		{"elementDelete", cfg.ElementDelete, &policy.ElementDelete},
		{"elementInsert", cfg.ElementInsert, &policy.ElementInsert},
		{"elementReload", cfg.ElementReload, &policy.ElementReload},
	}
	for _, o := range overrides {
		a, err := parseAnimation(o.key, o.value, def)
		if err != nil {
			return listview.AnimationPolicy{}, err
		}
		*o.dst = a
	}
	return policy, nil
}

func parseAnimation(key, value string, fallback listview.Animation) (listview.Animation, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback, nil
	}
	a, ok := listview.ParseAnimation(value)
	if !ok {
		return 0, fmt.Errorf("animation.%s: unknown animation %q", key, value)
	}
	return a, nil
}

// modulePath returns the module path declared in dir/go.mod, or "".
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "listdiff"
	}
	return base
}

func configError(path string, err error) error {
	return &errors.Error{Op: "config.Resolve", Kind: errors.KindConfig, Path: path, Err: err}
}
