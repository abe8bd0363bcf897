package panel

import (
	"context"
	"errors"
	"time"

	"github.com/recera/graphpanel/pkg/renderservice"
)

// ErrTimedOut is reported when the backoff ceiling is reached without a result
var ErrTimedOut = errors.New("panel: timed out waiting for render")

// Backoff is the polling policy for asynchronous renders. The first poll
// waits Initial; every "not ready" answer doubles the wait, and polling
// stops once the doubled wait would reach Ceiling.
type Backoff struct {
	Initial time.Duration
	Ceiling time.Duration
}

// DefaultBackoff polls after 1, 2, 4, 8, 16 and 32 seconds
var DefaultBackoff = Backoff{Initial: time.Second, Ceiling: 64 * time.Second}

func (b Backoff) withDefaults() Backoff {
	if b.Initial <= 0 {
		b.Initial = DefaultBackoff.Initial
	}
	if b.Ceiling <= 0 {
		b.Ceiling = DefaultBackoff.Ceiling
	}
	return b
}

// Next returns the delay that follows d and whether another poll may be
// scheduled with it
func (b Backoff) Next(d time.Duration) (time.Duration, bool) {
	next := d * 2
	return next, next < b.Ceiling
}

// Delays lists every delay the policy issues, in order
func (b Backoff) Delays() []time.Duration {
	b = b.withDefaults()
	if b.Initial >= b.Ceiling {
		return nil
	}
	out := []time.Duration{b.Initial}
	for d, ok := b.Next(b.Initial); ok; d, ok = b.Next(d) {
		out = append(out, d)
	}
	return out
}

// RenderJob is an asynchronous render in flight
type RenderJob struct {
	Handle renderservice.JobHandle
	// Delay is the wait before the next poll
	Delay time.Duration
	// Attempts counts polls issued so far
	Attempts int
	// Generation is the submit this job belongs to
	Generation uint64
}

// Await polls fetch on b's schedule until it returns a non-empty body. It
// blocks; the controller uses the loop-driven equivalent. Errors from
// fetch end the wait at once.
func Await(ctx context.Context, b Backoff, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	b = b.withDefaults()
	delay := b.Initial
	if delay >= b.Ceiling {
		return nil, ErrTimedOut
	}
	t := time.NewTimer(delay)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
		body, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			return body, nil
		}
		next, ok := b.Next(delay)
		if !ok {
			return nil, ErrTimedOut
		}
		delay = next
		t.Reset(delay)
	}
}
