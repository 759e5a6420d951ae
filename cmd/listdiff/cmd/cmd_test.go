package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/fixture"
	"github.com/go-drift/listdiff/pkg/errors"
)

// runCLI runs the CLI with args and returns everything written to stdout and
// stderr.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	oldOut, oldErr, oldNoColor := stdout, stderr, color.NoColor
	stdout, stderr = &out, &out
	t.Cleanup(func() {
		stdout, stderr, color.NoColor = oldOut, oldErr, oldNoColor
	})
	err := run(args)
	return out.String(), err
}

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const (
	oldSnapshot = `sections:
  - id: s
    elements:
      - id: a
      - id: b
        value: "1"
`
	newSnapshot = `sections:
  - id: s
    elements:
      - id: a
      - id: b
        value: "2"
      - id: c
`
)

func TestVersionAndHelp(t *testing.T) {
	out, err := runCLI(t, "--version")
	if err != nil || !strings.HasPrefix(out, "listdiff version "+Version) {
		t.Errorf("--version = %q, %v", out, err)
	}
	out, err = runCLI(t)
	if err != nil || !strings.Contains(out, "Commands:") || !strings.Contains(out, "apply") {
		t.Errorf("help = %q, %v", out, err)
	}
	out, err = runCLI(t, "diff", "--help")
	if err != nil || !strings.Contains(out, "listdiff diff <old> <new>") {
		t.Errorf("diff --help = %q, %v", out, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	out, err := runCLI(t, "frobnicate")
	if err == nil || !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Errorf("out = %q, err = %v", out, err)
	}
}

func TestReportError(t *testing.T) {
	var logged bytes.Buffer
	errors.SetHandler(&errors.LogHandler{Verbose: true, Out: &logged})
	t.Cleanup(func() { errors.SetHandler(nil) })

	dir := t.TempDir()
	bad := writeSnapshot(t, dir, "bad.yaml", "sections:\n  - value: x\n")
	good := writeSnapshot(t, dir, "new.yaml", newSnapshot)

	_, err := runCLI(t, "--dir", dir, "diff", bad, good)
	if err == nil {
		t.Fatal("diff of an undecodable snapshot succeeded")
	}
	ReportError(err)
	got := logged.String()
	if !strings.HasPrefix(got, "[listdiff error] ") || !strings.Contains(got, "[decode] path="+bad) {
		t.Errorf("handler output = %q", got)
	}

	logged.Reset()
	_, err = runCLI(t, "frobnicate")
	var plain bytes.Buffer
	oldErr := stderr
	stderr = &plain
	ReportError(err)
	stderr = oldErr
	if logged.Len() != 0 {
		t.Errorf("unstructured error reached the handler: %q", logged.String())
	}
	if !strings.HasPrefix(plain.String(), "Error: unknown command") {
		t.Errorf("plain output = %q", plain.String())
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", oldSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", newSnapshot)

	out, err := runCLI(t, "--dir", dir, "diff", old, next)
	if err != nil {
		t.Fatal(err)
	}
	want := `stage 1/2: 1 change
  reload element [0, 1]
stage 2/2: 1 change
  insert element [0, 2]
2 changes in 2 stages
`
	if d := cmp.Diff(want, out); d != "" {
		t.Errorf("output mismatch (-want +got):\n%s", d)
	}

	out, err = runCLI(t, "--dir", dir, "diff", old, old)
	if err != nil || out != "no changes\n" {
		t.Errorf("identical snapshots: %q, %v", out, err)
	}

	out, err = runCLI(t, "--dir", dir, "diff", "--summary", old, next)
	if err != nil || out != "2 changes in 2 stages\n" {
		t.Errorf("--summary: %q, %v", out, err)
	}
}

func TestDiffColor(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", newSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", oldSnapshot)

	out, err := runCLI(t, "--dir", dir, "--color=always", "diff", old, next)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\x1b[31mdelete element [0, 2]") {
		t.Errorf("expected a red delete line, got %q", out)
	}

	out, err = runCLI(t, "--dir", dir, "diff", old, next)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output to a buffer should not be colored: %q", out)
	}

	if _, err := runCLI(t, "--dir", dir, "--color", "rainbow", "diff", old, next); err == nil {
		t.Error("invalid --color should fail")
	}
}

func TestDiffRequiresTwoSnapshots(t *testing.T) {
	if _, err := runCLI(t, "diff", "only.yaml"); err == nil {
		t.Error("diff with one snapshot should fail")
	}
	if _, err := runCLI(t, "diff", "a.yaml", "b.yaml", "--bogus"); err == nil {
		t.Error("unknown flags should fail")
	}
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", oldSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", newSnapshot)
	golden := filepath.Join(dir, "golden", "apply.trace")

	out, err := runCLI(t, "--dir", dir, "apply", old, next, "--animation", "fade", "--write", golden)
	if err != nil {
		t.Fatal(err)
	}
	want := `beginUpdates
  reloadElements {[0, 1]} fade
endUpdates
beginUpdates
  insertElements {[0, 2]} fade
endUpdates
6 calls, 2 structural updates; 3 cells bound; surface consistent
`
	if d := cmp.Diff(want, out); d != "" {
		t.Errorf("output mismatch (-want +got):\n%s", d)
	}

	if _, err := runCLI(t, "--dir", dir, "apply", old, next, "--animation=fade", "--expect", golden); err != nil {
		t.Errorf("--expect with a matching trace: %v", err)
	}
	_, err = runCLI(t, "--dir", dir, "apply", old, next, "--expect", golden)
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Errorf("--expect with a different animation: %v", err)
	}
}

func TestApplyExpectNeverRewritesTrace(t *testing.T) {
	t.Setenv("LISTDIFF_UPDATE_TRACES", "1")
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", oldSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", newSnapshot)
	golden := writeSnapshot(t, dir, "stale.trace", "reloadData\n")

	_, err := runCLI(t, "--dir", dir, "apply", old, next, "--expect", golden)
	if err == nil {
		t.Fatal("--expect with a stale trace succeeded")
	}
	if !strings.Contains(err.Error(), "-reloadData") || !strings.Contains(err.Error(), "+beginUpdates") {
		t.Errorf("error lacks a line diff: %v", err)
	}
	if strings.Contains(err.Error(), "go test") {
		t.Errorf("error suggests a test command: %v", err)
	}
	data, err := os.ReadFile(golden)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "reloadData\n" {
		t.Errorf("expected trace was rewritten to %q", data)
	}

	if _, err := runCLI(t, "--dir", dir, "apply", old, next, "--expect", filepath.Join(dir, "missing.trace")); err == nil {
		t.Error("--expect with a missing file succeeded")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.trace")); !os.IsNotExist(err) {
		t.Errorf("missing expected trace was created: %v", err)
	}
}

func TestApplyHiddenReloads(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", oldSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", newSnapshot)

	out, err := runCLI(t, "--dir", dir, "apply", "--hidden", old, next)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "reloadData\n1 call, 0 structural updates;") {
		t.Errorf("output = %q", out)
	}
}

func TestApplyMaxChanges(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", "sections: []\n")
	next := writeSnapshot(t, dir, "new.yaml", "sections:\n  - id: a\n  - id: b\n")
	writeSnapshot(t, dir, "listdiff.yaml", "maxChanges: 1\n")

	out, err := runCLI(t, "--dir", dir, "apply", old, next)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "reloadData\n") {
		t.Errorf("configured maxChanges should force a reload, got %q", out)
	}

	out, err = runCLI(t, "--dir", dir, "apply", old, next, "--max-changes", "0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "insertSections [0 1] automatic") {
		t.Errorf("--max-changes 0 should animate, got %q", out)
	}
}

func TestParseApplyArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"two snapshots", []string{"a.yaml", "b.yaml"}, false},
		{"all flags", []string{"a.yaml", "--hidden", "--max-changes", "3", "--animation=none", "b.yaml"}, false},
		{"one snapshot", []string{"a.yaml"}, true},
		{"three snapshots", []string{"a.yaml", "b.yaml", "c.yaml"}, true},
		{"negative max", []string{"a.yaml", "b.yaml", "--max-changes", "-1"}, true},
		{"max without value", []string{"a.yaml", "b.yaml", "--max-changes"}, true},
		{"bad animation", []string{"a.yaml", "b.yaml", "--animation", "spin"}, true},
		{"unknown flag", []string{"a.yaml", "b.yaml", "--fast"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseApplyArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseApplyArgs(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}

	opts, err := parseApplyArgs([]string{"a.yaml", "--hidden", "--max-changes", "3", "b.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.old != "a.yaml" || opts.next != "b.yaml" || !opts.hidden || opts.maxChanges != 3 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	old := writeSnapshot(t, dir, "old.yaml", oldSnapshot)
	next := writeSnapshot(t, dir, "new.yaml", newSnapshot)

	out, err := runCLI(t, "--dir", dir, "preview", next, "--against", old, "--width", "240")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "new.png")
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("output = %q", out)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 240 {
		t.Errorf("width = %d, want 240", img.Bounds().Dx())
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeSnapshot(t, dir, "new.yaml", newSnapshot)
	bin := filepath.Join(dir, "new.cbor")
	back := filepath.Join(dir, "back.yml")

	if _, err := runCLI(t, "convert", src, bin); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "convert", bin, back); err != nil {
		t.Fatal(err)
	}

	want, err := fixture.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := fixture.Load(back)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}

	if _, err := runCLI(t, "convert", src, filepath.Join(dir, "out.json")); err == nil {
		t.Error("convert to an unsupported extension should fail")
	}
}

func TestStatusCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSnapshot(t, dir, "listdiff.yaml", "animation:\n  default: fade\n  elementDelete: left\nmaxChanges: 40\n")

	out, err := runCLI(t, "--dir", dir, "status")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Project: inbox",
		"max changes: 40",
		"section insert: fade",
		"element delete: left",
		filepath.Join(dir, "listdiff.yaml"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	writeSnapshot(t, dir, "listdiff.yaml", "color: purple\n")
	if _, err := runCLI(t, "--dir", dir, "status"); err == nil {
		t.Error("an invalid listdiff.yaml should fail")
	}
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "feed")

	out, err := runCLI(t, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Creating listdiff project: feed") {
		t.Errorf("output = %q", out)
	}
	for _, name := range []string{"listdiff.yaml", "snapshots/old.yaml", "snapshots/new.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	out, err = runCLI(t, "--dir", dir, "apply",
		filepath.Join(dir, "snapshots", "old.yaml"), filepath.Join(dir, "snapshots", "new.yaml"))
	if err != nil {
		t.Fatalf("apply on the generated snapshots: %v\n%s", err, out)
	}

	if _, err := runCLI(t, "init", dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v", err)
	}
	if _, err := runCLI(t, "init", filepath.Join(t.TempDir(), "x"), "--name", "9lives"); err == nil {
		t.Error("init should reject an invalid --name")
	}
}

func TestValidateDirectory(t *testing.T) {
	type tc struct {
		name    string
		dir     string
		wantErr bool
	}
	tests := []tc{
		{"simple name", "feed", false},
		{"relative path", "lists/feed", false},
		{"dot", ".", false},

		{"empty", "", true},
		{"root slash", "/", true},
		{"dotdot", "..", true},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests,
			tc{"drive root", `C:\`, true},
			tc{"root-level C:\\Users", `C:\Users`, true},
			tc{"nested windows path", `C:\Users\me\lists\feed`, false},
		)
	} else {
		tests = append(tests,
			tc{"absolute nested", "/home/user/lists/feed", false},
			tc{"root-level /etc", "/etc", true},
			tc{"root-level /tmp", "/tmp", true},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDirectory(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDirectory(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "feed", false},
		{"with hyphen", "my-feed", false},
		{"with underscore", "my_feed", false},
		{"uppercase", "Feed2", false},

		{"empty", "", true},
		{"starts with dot", ".hidden", true},
		{"starts with hyphen", "-bad", true},
		{"starts with number", "1feed", true},
		{"has spaces", "my feed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
