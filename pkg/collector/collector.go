// Package collector tails append-only log files and feeds parsed events
// into the pipeline.
package collector

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nxadm/tail"

	"github.com/sentinelsec/sentinel/pkg/models"
	"github.com/sentinelsec/sentinel/pkg/parser"
)

// existencePollInterval is how often a missing source file is re-checked.
const existencePollInterval = 5 * time.Second

// Collector tails one file and produces a stream of events for that source.
// The stream is lazy, infinite and non-restartable: it terminates only on
// context cancellation or an unrecoverable I/O error.
type Collector struct {
	source string
	logger *slog.Logger
}

// New creates a collector for one log source path.
func New(source string) *Collector {
	return &Collector{
		source: source,
		logger: slog.Default().With("component", "collector", "source", source),
	}
}

// Source returns the path this collector tails.
func (c *Collector) Source() string { return c.source }

// Run tails the source and calls emit for every appended line, in
// file-append order. If the file does not exist yet, Run polls for it every
// 5 seconds, logging a warning on each miss, and never fails on absence.
//
// Once open, the tail seeks to end-of-file: only lines appended after the
// collector starts are ingested. Historical backfill belongs to the
// scorer's training load, not the tail. Rotated or truncated files are not
// reopened.
//
// Run returns ctx.Err() on cancellation, or the underlying I/O error when
// the tail dies; that error is logged and ends the stream.
func (c *Collector) Run(ctx context.Context, emit func(*models.Event)) error {
	c.logger.Info("Starting to tail file")

	if err := c.waitForFile(ctx); err != nil {
		return err
	}

	t, err := tail.TailFile(c.source, tail.Config{
		Follow:    true,
		ReOpen:    false,
		MustExist: true,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		c.logger.Error("Failed to open file for tailing", "error", err)
		return err
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Collector cancelled")
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				err := t.Err()
				if err != nil {
					c.logger.Error("Tail terminated", "error", err)
				}
				return err
			}
			if line.Err != nil {
				c.logger.Error("Error reading line", "error", line.Err)
				return line.Err
			}
			emit(parser.ParseLine(line.Text, c.source))
		}
	}
}

// waitForFile blocks until the source file exists or ctx is cancelled.
func (c *Collector) waitForFile(ctx context.Context) error {
	for {
		if _, err := os.Stat(c.source); err == nil {
			return nil
		}
		c.logger.Warn("File not found, waiting", "retry_in", existencePollInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(existencePollInterval):
		}
	}
}
