package service

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	var done int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	if got := atomic.LoadInt64(&done); got != 100 {
		t.Errorf("completed jobs = %d, want 100", got)
	}
}

func TestWorkerPoolWaitCoversLateSubmissions(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var done int64
	pool.Submit(func() { atomic.AddInt64(&done, 1) })
	pool.Wait()
	pool.Submit(func() { atomic.AddInt64(&done, 1) })
	pool.Wait()

	if got := atomic.LoadInt64(&done); got != 2 {
		t.Errorf("completed jobs = %d, want 2", got)
	}
}

func TestWorkerPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("workers = %d, want a positive default", pool.workers)
	}
}

func TestWorkerPoolStartIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Start()
	defer pool.Close()

	var done int64
	pool.Submit(func() { atomic.AddInt64(&done, 1) })
	pool.Wait()
	if atomic.LoadInt64(&done) != 1 {
		t.Error("job did not run after double Start")
	}
}
