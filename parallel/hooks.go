package parallel

import (
	"sync"

	"github.com/schollz/progressbar/v3"
)

// hookSet binds the configured instrumentation callbacks and progress bar
// to one invocation. All callbacks run under the invocation's mutex, so a
// start or finish hook never interleaves with another hook even though the
// computations themselves run concurrently.
type hookSet struct {
	mu       *sync.Mutex
	start    func(item any, index int)
	finish   func(item any, index int, result any, err error)
	progress func(index int)
	bar      *progressbar.ProgressBar
}

func newHookSet(cfg *config, mu *sync.Mutex, total int) *hookSet {
	bar := cfg.bar
	if bar == nil && cfg.progressTitle != "" {
		bar = progressbar.Default(int64(total), cfg.progressTitle)
	}

	return &hookSet{
		mu:       mu,
		start:    cfg.start,
		finish:   cfg.finish,
		progress: cfg.progressFn,
		bar:      bar,
	}
}

func (h *hookSet) itemStart(item any, index int) {
	if h.start == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start(item, index)
}

// itemFinish fires after each item, passing whatever partial result exists.
// The bar advances here so it counts every item exactly once, failed or not.
func (h *hookSet) itemFinish(item any, index int, result any, err error) {
	if h.finish == nil && h.progress == nil && h.bar == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finish != nil {
		h.finish(item, index, result, err)
	}
	if h.progress != nil {
		h.progress(index)
	}
	if h.bar != nil {
		_ = h.bar.Add(1)
	}
}
