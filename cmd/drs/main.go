// drs inspects, extracts, and builds DRS resource archives.
//
//	drs info <archive>
//	drs list [--digest] <archive>
//	drs extract [-o dir] [-j N] <archive> [id...]
//	drs build -m manifest.yaml -o out.drs
//
// Archive arguments starting with http:// or https:// are read with HTTP
// range requests.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	drs "github.com/goto-bus-stop/genie-drs"
	drshttp "github.com/goto-bus-stop/genie-drs/http"
)

// errUsage marks errors caused by bad invocation.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "drs: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"info", "info <archive>", runInfo},
	{"list", "list [--digest] <archive>", runList},
	{"extract", "extract [-o dir] [-j N] <archive> [id...]", runExtract},
	{"build", "build -m manifest.yaml -o out.drs", runBuild},
}

// env carries the process-wide streams and options.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	tagLayout drs.TagLayout
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("drs", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	verbose := fs.BoolP("verbose", "v", false, "log debug output to stderr")
	legacy := fs.Bool("legacy-tags", false, "read table tags in the legacy reserved-byte layout")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	e := &env{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
	if *legacy {
		e.tagLayout = drs.TagLegacy
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr, fs)
		return fmt.Errorf("%w: missing command", errUsage)
	}
	for _, c := range commands {
		if c.name == rest[0] {
			return c.run(ctx, e, rest[1:])
		}
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage:")
	for _, c := range commands {
		fmt.Fprintf(w, "  drs %s\n", c.usage)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	fmt.Fprint(w, fs.FlagUsages())
}

// subFlags returns a flag set for a subcommand that reports to e.stderr.
func (e *env) subFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("drs "+name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parse parses a subcommand's flags, mapping failures to errUsage.
func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// open returns a handle for a local path or an http(s) URL.
func (e *env) open(target string) *drs.Archive {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return drs.Open(target,
			drs.WithOpener(drshttp.Opener(drshttp.WithLogger(e.logger))),
			drs.WithTagLayout(e.tagLayout),
			drs.WithLogger(e.logger))
	}
	return drs.Open(target, drs.WithTagLayout(e.tagLayout), drs.WithLogger(e.logger))
}
