package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/pkg/clock"
)

type fakeRequestSweeper struct {
	mu          sync.Mutex
	completed   int64
	timedOut    int64
	completeErr error
	timeoutErr  error

	completeCalls []clock.CivilTime
	timeoutCalls  []clock.CivilTime
}

func (f *fakeRequestSweeper) CompleteElapsed(_ context.Context, now clock.CivilTime) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls = append(f.completeCalls, now)
	if f.completeErr != nil {
		return 0, f.completeErr
	}
	n := f.completed
	f.completed = 0
	return n, nil
}

func (f *fakeRequestSweeper) TimeOutElapsed(_ context.Context, now clock.CivilTime) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeoutCalls = append(f.timeoutCalls, now)
	if f.timeoutErr != nil {
		return 0, f.timeoutErr
	}
	n := f.timedOut
	f.timedOut = 0
	return n, nil
}

func (f *fakeRequestSweeper) completeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completeCalls)
}

type recordedSweep struct {
	completed int64
	timedOut  int64
	err       error
}

type fakeObserver struct {
	sweeps []recordedSweep
}

func (f *fakeObserver) ObserveSweep(completed, timedOut int64, _ time.Duration, err error) {
	f.sweeps = append(f.sweeps, recordedSweep{completed: completed, timedOut: timedOut, err: err})
}

func TestSweepUsesCivilClock(t *testing.T) {
	// 19:45 UTC is already 01:15 the next day in the portal's civil zone.
	fixed := clock.Fixed{Instant: time.Date(2026, 3, 14, 19, 45, 0, 0, time.UTC)}
	requests := &fakeRequestSweeper{completed: 2, timedOut: 3}
	observer := &fakeObserver{}
	s := New(requests, observer, fixed, time.Minute, nil)

	s.Sweep(context.Background())

	require.Len(t, requests.completeCalls, 1)
	assert.Equal(t, "2026-03-15", requests.completeCalls[0].Date())
	assert.Equal(t, "01:15:00", requests.completeCalls[0].TimeOfDay())

	require.Len(t, observer.sweeps, 1)
	assert.Equal(t, recordedSweep{completed: 2, timedOut: 3}, observer.sweeps[0])
}

func TestSweepIsIdempotent(t *testing.T) {
	fixed := clock.Fixed{Instant: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	requests := &fakeRequestSweeper{completed: 1, timedOut: 1}
	observer := &fakeObserver{}
	s := New(requests, observer, fixed, time.Minute, nil)

	s.Sweep(context.Background())
	s.Sweep(context.Background())

	require.Len(t, observer.sweeps, 2)
	assert.Equal(t, recordedSweep{completed: 1, timedOut: 1}, observer.sweeps[0])
	assert.Equal(t, recordedSweep{}, observer.sweeps[1])
}

func TestSweepSurvivesStoreErrors(t *testing.T) {
	requests := &fakeRequestSweeper{completeErr: errors.New("connection reset")}
	observer := &fakeObserver{}
	s := New(requests, observer, clock.System{}, time.Minute, nil)

	s.Sweep(context.Background())

	require.Len(t, observer.sweeps, 1)
	assert.Error(t, observer.sweeps[0].err)
	// The TIMED_OUT pass is skipped once the COMPLETED pass fails; the next
	// tick retries both.
	assert.Empty(t, requests.timeoutCalls)
}

func TestSweeperRunsImmediatelyThenTicks(t *testing.T) {
	requests := &fakeRequestSweeper{}
	s := New(requests, nil, clock.System{}, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, requests.completeCallCount(), 2)
}
