package metadata

import (
	"context"
	"time"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Retry defaults for network backends.
const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 100 * time.Millisecond
)

// RetryLookup retries NETWORK_ERROR and TIMEOUT failures of the wrapped
// lookup with exponential backoff. Other errors return immediately.
type RetryLookup struct {
	Lookup   Lookup
	Attempts int
	Delay    time.Duration
}

// WithRetry wraps l with the default retry policy.
func WithRetry(l Lookup) *RetryLookup {
	return &RetryLookup{Lookup: l, Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay}
}

// Get implements Lookup.
func (r *RetryLookup) Get(ctx context.Context, id string) (Details, bool, error) {
	var (
		d  Details
		ok bool
	)
	err := retry(ctx, r.Attempts, r.Delay, func() error {
		var err error
		d, ok, err = r.Lookup.Get(ctx, id)
		return err
	})
	return d, ok, err
}

// Put implements Writer when the wrapped lookup does.
func (r *RetryLookup) Put(ctx context.Context, id string, d Details) error {
	w, ok := r.Lookup.(Writer)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "metadata backend is read-only")
	}
	return retry(ctx, r.Attempts, r.Delay, func() error {
		return w.Put(ctx, id, d)
	})
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. It returns the last error, or ctx.Err() when cancelled while
// waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if lastErr = fn(); lastErr == nil || !transient(lastErr) {
			return lastErr
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func transient(err error) bool {
	return errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeTimeout)
}
