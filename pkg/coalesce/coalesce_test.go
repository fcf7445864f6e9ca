package coalesce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_SingleCaller(t *testing.T) {
	c := New()

	v, _, err := c.Do(context.Background(), "k", func() (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

// N concurrent callers for one key must trigger exactly one producer
// invocation, and every caller must receive the identical result.
func TestDo_CoalescesConcurrentCallers(t *testing.T) {
	c := New()

	const callers = 50
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	producer := func() (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "board", nil
	}

	// First caller opens the flight.
	var wg sync.WaitGroup
	results := make([]any, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, errs[0] = c.Do(context.Background(), "scoreboard", producer)
	}()
	<-started

	// The rest attach while the flight is provably in progress.
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = c.Do(context.Background(), "scoreboard", producer)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("producer invoked %d times, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d got error: %v", i, errs[i])
		}
		if results[i] != "board" {
			t.Errorf("caller %d got %v, want board", i, results[i])
		}
	}
}

// All waiters receive the same failure, and the failure is not sticky:
// the very next call gets a fresh attempt.
func TestDo_FailureNotSticky(t *testing.T) {
	c := New()
	boom := errors.New("upstream down")

	const callers = 10
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	producer := func() (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return nil, boom
	}

	var wg sync.WaitGroup
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, errs[0] = c.Do(context.Background(), "k", producer)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = c.Do(context.Background(), "k", producer)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("producer invoked %d times, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if !errors.Is(errs[i], boom) {
			t.Errorf("caller %d got %v, want the shared failure", i, errs[i])
		}
	}

	// Next call runs a fresh producer rather than replaying the failure.
	v, _, err := c.Do(context.Background(), "k", func() (any, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("post-failure call got error: %v", err)
	}
	if v != "recovered" {
		t.Errorf("post-failure call got %v, want recovered", v)
	}
}

func TestDo_DifferentKeysIndependent(t *testing.T) {
	c := New()
	var calls atomic.Int32

	for _, key := range []string{"a", "b", "c"} {
		if _, _, err := c.Do(context.Background(), key, func() (any, error) {
			calls.Add(1)
			return key, nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("producer invoked %d times, want 3", got)
	}
}

func TestDo_CancelledCallerFailsFast(t *testing.T) {
	c := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Do(ctx, "k", func() (any, error) {
		t.Error("producer must not run for a cancelled caller")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
