package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
)

func runInfo(ctx context.Context, e *env, args []string) error {
	fs := e.subFlags("info")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: info takes one archive", errUsage)
	}

	a := e.open(fs.Arg(0))
	defer a.Close()
	idx, err := a.Index(ctx)
	if err != nil {
		return err
	}
	h := idx.Header()

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "variant:\t%s\n", h.Variant)
	fmt.Fprintf(tw, "copyright:\t%s\n", strconv.Quote(h.Copyright))
	fmt.Fprintf(tw, "version:\t%s\n", h.Version)
	fmt.Fprintf(tw, "type:\t%s\n", h.ArchiveType)
	fmt.Fprintf(tw, "tables:\t%d\n", h.TableCount)
	fmt.Fprintf(tw, "files:\t%d\n", idx.FileCount())
	fmt.Fprintf(tw, "first file offset:\t%d\n", h.FirstFileOffset)
	fmt.Fprintf(tw, "size:\t%d\n", idx.Size())
	for _, t := range idx.Tables() {
		fmt.Fprintf(tw, "table %q:\t%d files at %d\n", t.Tag.String(), t.FileCount(), t.Offset)
	}
	return tw.Flush()
}
