package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealSleep(t *testing.T) {
	t.Parallel()

	t.Run("returns after the duration", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		if err := Real().Sleep(context.Background(), 10*time.Millisecond); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) < 10*time.Millisecond {
			t.Error("sleep returned too early")
		}
	})

	t.Run("zero duration returns immediately", func(t *testing.T) {
		t.Parallel()
		if err := Real().Sleep(context.Background(), 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("cancelled context interrupts the sleep", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		start := time.Now()
		err := Real().Sleep(ctx, time.Minute)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, expected context.Canceled", err)
		}
		if time.Since(start) > 10*time.Second {
			t.Error("sleep was not interrupted")
		}
	})
}

func TestFakeClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("sleep advances time and records durations", func(t *testing.T) {
		t.Parallel()
		c := Fake(start)
		if err := c.Sleep(context.Background(), time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.Sleep(context.Background(), time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.Now(); !got.Equal(start.Add(61 * time.Second)) {
			t.Errorf("got %v", got)
		}
		sleeps := c.Sleeps()
		if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != time.Minute {
			t.Errorf("got sleeps %v", sleeps)
		}
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		t.Parallel()
		c := Fake(start)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := c.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
		if len(c.Sleeps()) != 0 {
			t.Error("cancelled sleep must not be recorded")
		}
	})

	t.Run("on sleep hook can cancel the caller", func(t *testing.T) {
		t.Parallel()
		c := Fake(start)
		ctx, cancel := context.WithCancel(context.Background())
		c.OnSleep(func(time.Duration) { cancel() })
		if err := c.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
	})

	t.Run("advance moves time forward", func(t *testing.T) {
		t.Parallel()
		c := Fake(start)
		c.Advance(time.Hour)
		if got := c.Now(); !got.Equal(start.Add(time.Hour)) {
			t.Errorf("got %v", got)
		}
	})
}
