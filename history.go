package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/soocke/photo3d-go/config"
	"github.com/soocke/photo3d-go/domain/journal"
	"github.com/soocke/photo3d-go/domain/storage"
)

var errNoJournal = errors.New("journal_path is not configured")

// printHistory lists the newest journal entries.
func printHistory(ctx context.Context, cfg *config.Config, limit int, out io.Writer, logger *slog.Logger) error {
	if cfg.JournalPath == "" {
		return errNoJournal
	}
	path, err := storage.StaticDir(cfg.JournalPath)()
	if err != nil {
		return err
	}
	j, err := journal.Open(path, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	total, err := j.Count(ctx, false)
	if err != nil {
		return err
	}
	failed, err := j.Count(ctx, true)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN\tFILE\tSIZE\tRESULT")
	for _, e := range entries {
		result := e.Path
		if e.Error != "" {
			result = "error: " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", humanize.Time(e.TakenAt), e.Name, humanize.Bytes(uint64(e.Size)), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d files recorded, %d failed\n", total, failed)
	return err
}
