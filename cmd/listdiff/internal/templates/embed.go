// Package templates provides embedded template files for project creation.
package templates

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed init/*
var FS embed.FS

// InitData contains the data for init template substitution.
type InitData struct {
	Name    string // project name, e.g. "settings"
	Version string // configuration format version
}

// InitFile pairs an embedded template with the file it produces.
type InitFile struct {
	Template string
	Dest     string
}

// InitFiles lists the files written by "listdiff init", relative to the
// project directory.
func InitFiles() []InitFile {
	return []InitFile{
		{"init/listdiff.yaml.tmpl", "listdiff.yaml"},
		{"init/old.yaml.tmpl", "snapshots/old.yaml"},
		{"init/new.yaml.tmpl", "snapshots/new.yaml"},
	}
}

// Render executes the named template with data.
func Render(name string, data InitData) (string, error) {
	content, err := fs.ReadFile(FS, name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
