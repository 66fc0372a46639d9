package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRelayer struct {
	mu      sync.Mutex
	batches []int
	calls   int
	err     error
}

func (f *fakeRelayer) RelayPending(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeRelayer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestOutboxRelay_DrainsUntilEmpty(t *testing.T) {
	f := &fakeRelayer{batches: []int{100, 100, 7}}
	r := NewOutboxRelay(f, time.Hour)

	r.drain(context.Background())

	// three non-empty batches and one empty
	assert.Equal(t, 4, f.callCount())
}

func TestOutboxRelay_StopsOnError(t *testing.T) {
	f := &fakeRelayer{err: errors.New("broker down")}
	r := NewOutboxRelay(f, time.Hour)

	r.drain(context.Background())

	assert.Equal(t, 1, f.callCount())
}

func TestOutboxRelay_Run(t *testing.T) {
	f := &fakeRelayer{batches: []int{3}}
	r := NewOutboxRelay(f, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
