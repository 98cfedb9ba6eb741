package resource

import (
	"context"
	"time"
)

const (
	// DefaultWaitTimeout bounds a WaitFor call that never reaches a
	// terminal status.
	DefaultWaitTimeout = 10 * time.Minute

	// PollInterval is the sleep between refresh iterations.
	PollInterval = 5 * time.Second
)

// WaitOptions parameterizes a WaitFor call. The zero value polls for
// StatusActive with the process-wide defaults.
type WaitOptions struct {
	// Status is the terminal status to wait for. Defaults to StatusActive.
	Status string

	// Timeout bounds the wait. Defaults to DefaultWaitTimeout.
	Timeout time.Duration

	// Interval is the sleep between refreshes. Defaults to PollInterval.
	Interval time.Duration

	// Observer, if set, is invoked with the handle after every refresh.
	Observer func(*Handle)
}

// WaitFor blocks until the resource reaches the terminal status, reports
// StatusError, or the timeout elapses. All three exits return nil; callers
// distinguish them by inspecting Status afterwards. A refresh failure or
// context cancellation aborts the wait with that error.
func (h *Handle) WaitFor(ctx context.Context, opts WaitOptions) error {
	if opts.Status == "" {
		opts.Status = StatusActive
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWaitTimeout
	}
	if opts.Interval <= 0 {
		opts.Interval = PollInterval
	}

	deadline := time.Now().Add(opts.Timeout)
	for {
		if err := h.Refresh(ctx, h.ID); err != nil {
			return err
		}
		if opts.Observer != nil {
			opts.Observer(h)
		}

		if h.Status == StatusError || h.Status == opts.Status {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}
