package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/deptree/pkg/errors"
)

// flakyLookup fails with err for the first n calls.
type flakyLookup struct {
	n     int
	err   error
	calls int
	puts  map[string]Details
}

func (f *flakyLookup) Get(_ context.Context, id string) (Details, bool, error) {
	f.calls++
	if f.calls <= f.n {
		return Details{}, false, f.err
	}
	return Details{License: "MIT"}, true, nil
}

func (f *flakyLookup) Put(_ context.Context, id string, d Details) error {
	f.calls++
	if f.calls <= f.n {
		return f.err
	}
	if f.puts == nil {
		f.puts = map[string]Details{}
	}
	f.puts[id] = d
	return nil
}

func TestRetryLookup(t *testing.T) {
	netErr := errors.New(errors.ErrCodeNetwork, "connection refused")
	tests := []struct {
		name      string
		failures  int
		err       error
		wantOK    bool
		wantCalls int
	}{
		{"success first try", 0, nil, true, 1},
		{"recovers from transient failures", 2, netErr, true, 3},
		{"gives up after attempts", 5, netErr, false, 3},
		{"does not retry permanent errors", 5, errors.New(errors.ErrCodeInvalidFormat, "bad hash"), false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &flakyLookup{n: tt.failures, err: tt.err}
			l := &RetryLookup{Lookup: inner, Attempts: 3, Delay: time.Millisecond}

			d, ok, err := l.Get(context.Background(), "lodash")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCalls, inner.calls)
			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, "MIT", d.License)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRetryLookupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inner := &flakyLookup{n: 5, err: errors.New(errors.ErrCodeTimeout, "slow")}
	l := &RetryLookup{Lookup: inner, Attempts: 3, Delay: time.Hour}

	_, _, err := l.Get(ctx, "lodash")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryLookupPut(t *testing.T) {
	inner := &flakyLookup{n: 1, err: errors.New(errors.ErrCodeNetwork, "reset")}
	l := WithRetry(inner)
	l.Delay = time.Millisecond

	require.NoError(t, l.Put(context.Background(), "react", Details{License: "MIT"}))
	assert.Equal(t, "MIT", inner.puts["react"].License)

	readOnly := WithRetry(MapLookup{})
	err := readOnly.Put(context.Background(), "react", Details{})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}
