// Package clock abstracts wall-clock reads and sleeps so that the retry
// and repeat loops of the downloader can be tested without waiting.
//
// Production code injects Real(); tests inject Fake(), which advances its
// time instantly on Sleep and records every requested duration.
package clock

import (
	"context"
	"time"
)

// Clock provides the current time and cancellable sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when the sleep was interrupted.
	// A non-positive d returns immediately unless ctx is already done.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
