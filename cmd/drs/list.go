package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/opencontainers/go-digest"

	drs "github.com/goto-bus-stop/genie-drs"
)

func runList(ctx context.Context, e *env, args []string) error {
	fs := e.subFlags("list")
	withDigest := fs.Bool("digest", false, "print the sha256 digest of each entry")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: list takes one archive", errUsage)
	}

	a := e.open(fs.Arg(0))
	defer a.Close()
	entries, err := a.Entries(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	header := "TAG\tID\tOFFSET\tSIZE\tKIND"
	if *withDigest {
		header += "\tDIGEST"
	}
	fmt.Fprintln(tw, header)
	for entry := range entries {
		kind, dgst, err := describe(ctx, a, entry, *withDigest)
		if err != nil {
			return err
		}
		off, _ := entry.Offset()
		fmt.Fprintf(tw, "%q\t%d\t%d\t%d\t%s", entry.Tag.String(), entry.ID, off, entry.Size, kind)
		if *withDigest {
			fmt.Fprintf(tw, "\t%s", dgst)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// describe classifies an entry from its leading bytes and, when asked,
// digests its whole payload.
func describe(ctx context.Context, a *drs.Archive, entry *drs.Entry, withDigest bool) (drs.Kind, digest.Digest, error) {
	r, err := a.OpenEntry(ctx, entry)
	if err != nil {
		return 0, "", err
	}
	head := make([]byte, drs.SniffLen)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return 0, "", fmt.Errorf("entry %d: %w", entry.ID, err)
	}
	kind := drs.Classify(entry.Tag, head[:n])
	if !withDigest {
		return kind, "", nil
	}
	dgst, err := digest.FromReader(r)
	if err != nil {
		return 0, "", fmt.Errorf("entry %d: %w", entry.ID, err)
	}
	return kind, dgst, nil
}
