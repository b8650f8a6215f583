package parallel

import (
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/parallel/internal/cpu"
)

// Option is a functional option for configuring one invocation.
type Option func(*config)

type strategyKind int

const (
	strategyAuto strategyKind = iota
	strategyThreads
	strategyProcesses
)

type config struct {
	count    int // -1 = detect CPU count
	strategy strategyKind

	start  func(item any, index int)
	finish func(item any, index int, result any, err error)

	progressTitle string
	progressFn    func(index int)
	bar           *progressbar.ProgressBar
	mu            *sync.Mutex
	rateLimiter   *rate.Limiter
}

func newConfig(opts ...Option) *config {
	cfg := &config{count: -1}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// poolSize resolves the executor count and strategy for an invocation over
// itemCount items. canSpawn reports whether the work function can run in a
// separate process (it must be registered by name); when it cannot, thread
// execution is forced.
func (c *config) poolSize(itemCount int, canSpawn bool) (n int, processes bool) {
	n = c.count
	if n < 0 {
		n = cpu.Available()
	}
	n = min(n, itemCount)

	processes = canSpawn && c.strategy != strategyThreads
	return n, processes
}

// WithCount sets the pool size. Defaults to the detected CPU count.
// A count of zero runs every item sequentially in the calling goroutine,
// with the same per-item hook contract as the parallel paths.
func WithCount(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.count = n
		}
	}
}

// WithThreads forces goroutine-based execution with n executors.
func WithThreads(n int) Option {
	return func(cfg *config) {
		cfg.strategy = strategyThreads
		if n >= 0 {
			cfg.count = n
		}
	}
}

// WithProcesses selects worker-process execution with n workers.
// The work function must be registered (see Register); unregistered
// closures cannot cross a process boundary and run on goroutines instead.
func WithProcesses(n int) Option {
	return func(cfg *config) {
		cfg.strategy = strategyProcesses
		if n >= 0 {
			cfg.count = n
		}
	}
}

// WithStart installs a callback invoked with (item, index) before each
// item is computed. Callbacks never interleave: the invocation's mutex
// serializes them even though computation proceeds concurrently.
func WithStart(fn func(item any, index int)) Option {
	return func(cfg *config) {
		cfg.start = fn
	}
}

// WithFinish installs a callback invoked with (item, index, result, err)
// after each item, even when the computation failed. It fires exactly once
// per claimed item, under the same mutex as WithStart callbacks.
func WithFinish(fn func(item any, index int, result any, err error)) Option {
	return func(cfg *config) {
		cfg.finish = fn
	}
}

// WithProgress renders a progress bar with the given title, advanced once
// per finished item regardless of success or failure.
func WithProgress(title string) Option {
	return func(cfg *config) {
		cfg.progressTitle = title
	}
}

// WithProgressFunc reports progress through a callback instead of a bar,
// invoked with the item's index as each item finishes, success or failure.
// It runs under the same mutex as the other hooks.
func WithProgressFunc(fn func(index int)) Option {
	return func(cfg *config) {
		cfg.progressFn = fn
	}
}

// WithProgressBar drives a caller-managed bar instead of creating one.
func WithProgressBar(bar *progressbar.ProgressBar) Option {
	return func(cfg *config) {
		cfg.bar = bar
	}
}

// WithMutex supplies the lock used to serialize start/finish callbacks and
// the work cursor. A fresh lock is created per call when absent; passing
// one is only useful to serialize callbacks across nested invocations.
func WithMutex(mu *sync.Mutex) Option {
	return func(cfg *config) {
		cfg.mu = mu
	}
}

// WithRateLimit throttles item claiming across all executors of the
// invocation. itemsPerSecond is the sustained rate, burst the number of
// claims that may proceed without waiting.
func WithRateLimit(itemsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if itemsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(itemsPerSecond), burst)
		}
	}
}
