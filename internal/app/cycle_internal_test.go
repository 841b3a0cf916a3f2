package app

import (
	"context"
	"testing"
	"time"
)

func TestUntilNextHour(t *testing.T) {
	cases := []struct {
		now  time.Time
		hour int
		want time.Duration
	}{
		{time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC), 0, 30 * time.Minute},
		{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 0, 24 * time.Hour},
		{time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC), 1, 30 * time.Minute},
		{time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), 1, 23 * time.Hour},
	}
	for _, tc := range cases {
		if got := untilNextHour(tc.now, tc.hour); got != tc.want {
			t.Fatalf("untilNextHour(%v, %d) = %v, want %v", tc.now, tc.hour, got, tc.want)
		}
	}
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler := NewScheduler(nil, nil, nil, 5)
	scheduler.Start(context.Background())
	scheduler.Start(context.Background()) // second start is a no-op

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("stop did not return")
	}

	scheduler.Stop() // stopping twice is safe
}
