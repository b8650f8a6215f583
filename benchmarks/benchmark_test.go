package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/utkarsh5026/parallel/parallel"
)

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		result := 0
		for i := 0; i < iterations; i++ {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		select {
		case <-time.After(delay):
			return task * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func BenchmarkMap_ExecutorScaling(b *testing.B) {
	counts := []int{1, 2, 4, 8, 16}
	items := makeItems(10000)
	work := cpuBoundWork(1000)

	for _, count := range counts {
		b.Run(benchName("executors", count), func(b *testing.B) {
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := parallel.Map(ctx, items, work, parallel.WithThreads(count))
				if err != nil {
					b.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func BenchmarkMap_SequentialBaseline(b *testing.B) {
	items := makeItems(10000)
	work := cpuBoundWork(1000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := parallel.Map(ctx, items, work, parallel.WithCount(0))
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkMap_IOBound(b *testing.B) {
	items := makeItems(200)
	work := ioBoundWork(time.Millisecond)
	ctx := context.Background()

	for _, count := range []int{4, 16, 64} {
		b.Run(benchName("executors", count), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := parallel.Map(ctx, items, work, parallel.WithThreads(count))
				if err != nil {
					b.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func BenchmarkEach_DiscardedResults(b *testing.B) {
	items := makeItems(10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := parallel.Each(ctx, items, func(ctx context.Context, task int) error {
			return nil
		}, parallel.WithThreads(8))
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkInThreads_FanOut(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := parallel.InThreads(ctx, 8, func(ctx context.Context, slot int) (int, error) {
			return slot, nil
		})
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func benchName(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}
