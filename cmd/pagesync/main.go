// Command pagesync runs the Markdown sync daemon: it watches a content
// tree, keeps a rendered, persisted page catalog consistent with it, and
// serves the result over HTTP.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
)

// Set at build time with: -ldflags "-X main.version=1.0.0"
var version = "dev"

// CLI is the root command definition & global flags, in the teacher's
// kong command-struct style (cmd/docbuilder/main.go).
type CLI struct {
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	VersionFlag kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Run the full daemon: initial sync, watcher, and HTTP server"`
	Sync    SyncCmd    `cmd:"" help:"Run a one-shot full sync then exit"`
	Version VersionCmd `cmd:"" help:"Print the build version"`
}

// Global is shared context passed to every subcommand.
type Global struct {
	Logger *slog.Logger
}

// AfterApply installs the process-wide slog logger once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func main() {
	cli := &CLI{}
	parser := kong.Parse(cli,
		kong.Description("pagesync: keep a rendered page catalog consistent with a Markdown content tree."),
		kong.Vars{"version": version},
	)

	logger := slog.Default()
	errorAdapter := apperrors.NewCLIErrorAdapter(cli.Verbose, logger)
	globals := &Global{Logger: logger}

	if err := parser.Run(globals, cli); err != nil {
		errorAdapter.HandleError(err)
	}
}

// VersionCmd prints the build version and exits.
type VersionCmd struct{}

// Run implements the version command.
func (VersionCmd) Run(_ *Global, _ *CLI) error {
	_, err := os.Stdout.WriteString(version + "\n")
	return err
}
