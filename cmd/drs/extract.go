package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	drs "github.com/goto-bus-stop/genie-drs"
)

func runExtract(ctx context.Context, e *env, args []string) error {
	fs := e.subFlags("extract")
	out := fs.StringP("output", "o", ".", "directory to write entries to")
	workers := fs.IntP("jobs", "j", runtime.GOMAXPROCS(0), "number of entries to extract in parallel")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: extract takes an archive and optional ids", errUsage)
	}

	a := e.open(fs.Arg(0))
	defer a.Close()

	var selected []*drs.Entry
	if fs.NArg() == 1 {
		entries, err := a.Entries(ctx)
		if err != nil {
			return err
		}
		for entry := range entries {
			selected = append(selected, entry)
		}
	} else {
		for _, arg := range fs.Args()[1:] {
			id, err := strconv.ParseInt(arg, 10, 32)
			if err != nil {
				return fmt.Errorf("%w: invalid id %q", errUsage, arg)
			}
			entry, ok, err := a.Lookup(ctx, int32(id))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %d: %w", id, drs.ErrNotFound)
			}
			if !slices.Contains(selected, entry) {
				selected = append(selected, entry)
			}
		}
	}

	// ids may repeat across tables; later duplicates get an occurrence
	// suffix so no two workers write the same file
	suffix := make([]int, len(selected))
	seen := make(map[int32]int)
	for i, entry := range selected {
		seen[entry.ID]++
		suffix[i] = seen[entry.ID]
	}

	if err := os.MkdirAll(*out, 0o750); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for i, entry := range selected {
		g.Go(func() error {
			data, err := a.ReadEntry(gctx, entry)
			if err != nil {
				return err
			}
			name := filepath.Join(*out, fileName(entry, data, suffix[i]))
			if err := os.WriteFile(name, data, 0o600); err != nil {
				return err
			}
			e.logger.Debug("extracted entry", "id", entry.ID, "path", name, "size", len(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "extracted %d entries to %s\n", len(selected), *out)
	return nil
}

// fileName returns "<id>.<ext>" with the extension derived from the
// entry's tag, or "pal" for palette text. The n-th entry sharing an id,
// for n > 1, is named "<id>-<n>.<ext>".
func fileName(entry *drs.Entry, data []byte, n int) string {
	head := data[:min(len(data), drs.SniffLen)]
	var ext string
	switch drs.Classify(entry.Tag, head) {
	case drs.KindSprite:
		ext = "slp"
	case drs.KindAudio:
		ext = "wav"
	case drs.KindPalette:
		ext = "pal"
	default:
		ext = strings.TrimSpace(entry.Tag.String())
		if entry.Tag == drs.TagBinary {
			ext = "bin"
		}
	}
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		ext = "dat"
	}
	if n > 1 {
		return fmt.Sprintf("%d-%d.%s", entry.ID, n, ext)
	}
	return fmt.Sprintf("%d.%s", entry.ID, ext)
}
