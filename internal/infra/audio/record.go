package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// record reads frames with read until u is complete. read fills frame in
// place. An error matching overflow means the device dropped input while
// nobody was reading; the frame is still valid, so it is kept.
func record(ctx context.Context, read func() error, frame []int16, u *utterance, overflow error, logger *slog.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := read(); err != nil {
			if overflow == nil || !errors.Is(err, overflow) {
				return fmt.Errorf("reading from stream: %w", err)
			}
			logger.Debug("input overflowed, keeping frame")
		}

		f := make([]int16, len(frame))
		copy(f, frame)
		if u.add(f) {
			return nil
		}
	}
}
