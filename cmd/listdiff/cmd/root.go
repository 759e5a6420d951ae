// Package cmd implements the listdiff CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (diff, apply, preview, convert, status, init).
package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/go-drift/listdiff/cmd/listdiff/internal/config"
	"github.com/go-drift/listdiff/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "listdiff",
	Short: "listdiff - staged changesets for sectioned lists",
	Long: `listdiff computes the staged changeset between two list snapshots and
replays it against an in-memory list surface, the way a native list
control would receive it.

Use "listdiff <command> --help" for more information about a command.`,
	Usage: "listdiff <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Global flag values, reset by every run.
var (
	projectDir    string
	colorOverride string
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:])
}

// ReportError prints the error that ended a run. Structured errors go to the
// global error handler; recovered panics were reported when they were
// recovered.
func ReportError(err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		errors.Report(e)
		return
	}
	var pe *errors.PanicError
	if stderrors.As(err, &pe) {
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

func run(args []string) error {
	projectDir = "."
	colorOverride = ""

	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --dir and --color
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "listdiff version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--dir", "--color":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			setGlobal(arg, args[i+1])
			i++
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && (name == "--dir" || name == "--color") {
				setGlobal(name, value)
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func setGlobal(name, value string) {
	switch name {
	case "--dir":
		projectDir = value
	case "--color":
		colorOverride = value
	}
}

// loadConfig resolves the project configuration for the current run and
// configures colored output from it.
func loadConfig() (*config.Resolved, error) {
	root, err := config.FindProjectRoot(projectDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}
	if colorOverride != "" {
		mode := config.ColorMode(strings.ToLower(colorOverride))
		switch mode {
		case config.ColorAuto, config.ColorAlways, config.ColorNever:
			cfg.Color = mode
		default:
			return nil, fmt.Errorf("--color must be auto, always or never, got %q", colorOverride)
		}
	}
	setupColor(cfg.Color)
	return cfg, nil
}

func setupColor(mode config.ColorMode) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		f, ok := stdout.(*os.File)
		color.NoColor = !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()))
	}
}

func printHelp(cmd *Command) {
	w := stdout
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintln(w, "  --dir DIR            Directory to search for listdiff.yaml (default: .)")
	fmt.Fprintln(w, "  --color MODE         Colored output: auto, always or never")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  listdiff diff old.yaml new.yaml           Print the staged changeset")
	fmt.Fprintln(w, "  listdiff apply old.yaml new.yaml          Replay it against a list surface")
	fmt.Fprintln(w, "  listdiff preview new.yaml --against old.yaml -o new.png")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}

// requireValue returns the value following the flag at args[i].
func requireValue(args []string, i int) (string, error) {
	if i+1 >= len(args) {
		return "", fmt.Errorf("%s requires a value", args[i])
	}
	return args[i+1], nil
}
