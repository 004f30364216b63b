package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nxadm/tail"
)

// DefaultPublishInterval is how often a growing feed publishes a snapshot.
const DefaultPublishInterval = 100 * time.Millisecond

type Options struct {
	// MaxRecords bounds each snapshot. Defaults to DefaultMaxRecords.
	MaxRecords int
	// Poll watches the file by polling instead of filesystem events.
	Poll bool
	// Follow keeps reading as the file grows. When false the channel is
	// closed after the current contents were published.
	Follow bool
	// Interval coalesces lines read in a burst into one snapshot. Defaults
	// to DefaultPublishInterval.
	Interval time.Duration
	Logger   *slog.Logger
}

func openTail(path string, opts Options) (*tail.Tail, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    opts.Follow,
		ReOpen:    opts.Follow,
		MustExist: !opts.Follow,
		Poll:      opts.Poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to follow feed %s: %w", path, err)
	}
	return t, nil
}

// addLine parses line into acc and reports whether a record was added.
func addLine(acc *Accumulator, line *tail.Line, path string, logger *slog.Logger) bool {
	if line.Err != nil {
		logger.Warn("Feed read failed", "path", path, "error", line.Err)
		return false
	}
	rec, err := Parse([]byte(line.Text))
	if errors.Is(err, ErrEmptyLine) {
		return false
	}
	if err != nil {
		logger.Warn("Skipping malformed feed line", "path", path, "line", line.Num, "error", err)
		return false
	}
	acc.Add(rec)
	return true
}

// Follow reads the JSONL file at path and publishes the accumulated records
// at most once per interval, and once more at end of file without Follow.
// Consumers always receive the latest snapshot; snapshots they did not pick
// up in time are dropped. The channel is closed when ctx is done or, without
// Follow, at end of file.
func Follow(ctx context.Context, path string, opts Options) (<-chan []Record, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	t, err := openTail(path, opts)
	if err != nil {
		return nil, err
	}

	out := make(chan []Record, 1)
	go func() {
		defer close(out)
		defer t.Cleanup()
		defer t.Stop() //nolint:errcheck

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		acc := NewAccumulator(opts.MaxRecords)
		dirty := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if dirty {
					publish(ctx, out, acc.Snapshot())
					dirty = false
				}
			case line, ok := <-t.Lines:
				if !ok {
					if dirty {
						publish(ctx, out, acc.Snapshot())
					}
					return
				}
				if addLine(acc, line, path, logger) {
					dirty = true
				}
			}
		}
	}()
	return out, nil
}

// publish replaces any snapshot still waiting in out.
func publish(ctx context.Context, out chan []Record, snapshot []Record) {
	select {
	case <-out:
	default:
	}
	select {
	case out <- snapshot:
	case <-ctx.Done():
	}
}

// Load reads the records currently in the file at path.
func Load(ctx context.Context, path string, maxRecords int) ([]Record, error) {
	t, err := openTail(path, Options{})
	if err != nil {
		return nil, err
	}
	defer t.Cleanup()
	defer t.Stop() //nolint:errcheck

	acc := NewAccumulator(maxRecords)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return acc.Snapshot(), nil
			}
			addLine(acc, line, path, slog.Default())
		}
	}
}
