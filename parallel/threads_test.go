package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestInThreads_ResultsOrderedBySlot(t *testing.T) {
	results, err := InThreads(context.Background(), 4, func(ctx context.Context, slot int) (int, error) {
		time.Sleep(time.Duration(4-slot) * 5 * time.Millisecond)
		return slot * 10, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := range results {
		if results[i] != i*10 {
			t.Errorf("slot %d: expected %d, got %d", i, i*10, results[i])
		}
	}
}

func TestInThreads_ZeroCount(t *testing.T) {
	results, err := InThreads(context.Background(), 0, func(ctx context.Context, slot int) (int, error) {
		t.Error("task should not run")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestInThreads_AllOutcomesCollectedBeforeRaising(t *testing.T) {
	boom := errors.New("slot failure")
	var finished atomic.Int32

	_, err := InThreads(context.Background(), 5, func(ctx context.Context, slot int) (int, error) {
		defer finished.Add(1)
		if slot == 2 {
			return 0, boom
		}
		time.Sleep(20 * time.Millisecond)
		return slot, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected slot failure, got %v", err)
	}
	if finished.Load() != 5 {
		t.Errorf("expected every task to finish before the error is raised, got %d", finished.Load())
	}
}

func TestInThreads_RunsConcurrently(t *testing.T) {
	const pause = 100 * time.Millisecond

	startAt := time.Now()
	_, err := InThreads(context.Background(), 5, func(ctx context.Context, slot int) (int, error) {
		time.Sleep(pause)
		return slot, nil
	})
	elapsed := time.Since(startAt)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed >= 5*pause {
		t.Errorf("expected concurrent execution, took %v", elapsed)
	}
}

func TestMap_RateLimitThrottlesClaims(t *testing.T) {
	items := make([]int, 6)

	startAt := time.Now()
	_, err := Map(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithThreads(4), WithRateLimit(50, 1))
	elapsed := time.Since(startAt)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 6 claims at 50/sec with burst 1 needs at least ~100ms.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected rate limiting to slow claims, took %v", elapsed)
	}
}
