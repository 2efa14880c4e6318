package main

import (
	"context"
	"fmt"

	drs "github.com/goto-bus-stop/genie-drs"
	"github.com/goto-bus-stop/genie-drs/internal/manifest"
)

func runBuild(ctx context.Context, e *env, args []string) error {
	fs := e.subFlags("build")
	manifestPath := fs.StringP("manifest", "m", "", "YAML manifest describing the archive")
	out := fs.StringP("output", "o", "", "archive file to write")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *manifestPath == "" || *out == "" || fs.NArg() != 0 {
		return fmt.Errorf("%w: build requires -m and -o", errUsage)
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		return err
	}
	opts, err := m.BuildOptions()
	if err != nil {
		return err
	}
	b := drs.NewBuilder(append(opts, drs.BuildWithLogger(e.logger))...)
	files, err := m.Populate(b)
	if err != nil {
		return err
	}
	defer files.Close()

	if err := b.WriteFile(ctx, *out); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %d entries in %d tables to %s\n", b.FileCount(), len(b.Tables()), *out)
	return nil
}
