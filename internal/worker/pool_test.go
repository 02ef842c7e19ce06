package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/worker"
)

type countingJob struct {
	runs *atomic.Int32
	err  error
	done chan struct{}
}

func (j countingJob) Name() string { return "counting" }

func (j countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.done != nil {
		j.done <- struct{}{}
	}
	return j.err
}

type panicJob struct{ done chan struct{} }

func (j panicJob) Name() string { return "panic" }

func (j panicJob) Run(ctx context.Context) error {
	defer close(j.done)
	panic("boom")
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(3, 16)
	pool.Start(context.Background())

	var runs atomic.Int32
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		err := errors.New("ignored")
		if i%2 == 0 {
			err = nil
		}
		require.NoError(t, pool.TrySubmit(countingJob{runs: &runs, err: err, done: done}))
	}
	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	pool.Stop()
	assert.Equal(t, int32(10), runs.Load())
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	panicked := make(chan struct{})
	require.NoError(t, pool.TrySubmit(panicJob{done: panicked}))
	<-panicked

	var runs atomic.Int32
	done := make(chan struct{}, 1)
	require.NoError(t, pool.TrySubmit(countingJob{runs: &runs, done: done}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover from panic")
	}
}

func TestTrySubmitQueueFull(t *testing.T) {
	// not started, so nothing drains the queue
	pool := worker.NewPool(1, 1)
	var runs atomic.Int32

	require.NoError(t, pool.TrySubmit(countingJob{runs: &runs}))
	assert.Equal(t, 1, pool.QueueSize())
	assert.ErrorIs(t, pool.TrySubmit(countingJob{runs: &runs}), worker.ErrQueueFull)
}

func TestTrySubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var runs atomic.Int32
	assert.ErrorIs(t, pool.TrySubmit(countingJob{runs: &runs}), worker.ErrPoolStopped)
}
