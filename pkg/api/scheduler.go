package api

import (
	"sync"
	"time"
)

// Task is one queued unit of work, typically a single Client.Get wrapped in a
// closure. The scheduler decides when it starts, nothing else.
type Task func() (any, error)

// Outcome is the result of one task: a value or an error, never both.
type Outcome struct {
	Value any
	Err   error
}

// Scheduler runs a batch of tasks while holding two caps at once: at most
// maxConcurrent tasks in flight, and at most windowLimit task starts within
// any trailing window. Admission is conservative: starts are timestamped and
// counted against the window until they age out, so a burst right before a
// window boundary can never combine with the next window to exceed the cap.
type Scheduler struct {
	maxConcurrent int
	windowLimit   int
	window        time.Duration

	mu     sync.Mutex
	starts []time.Time
}

// Default caps: the upstream tolerates roughly sixty calls a second before
// handing out 403s.
const (
	DefaultMaxConcurrent = 60
	DefaultWindowLimit   = 60
	DefaultWindow        = time.Second
)

// NewScheduler builds a scheduler with the given caps. Caps below one make no
// progress at all, so they are floored to one.
func NewScheduler(maxConcurrent, windowLimit int, window time.Duration) *Scheduler {
	return &Scheduler{
		maxConcurrent: max(maxConcurrent, 1),
		windowLimit:   max(windowLimit, 1),
		window:        window,
	}
}

func DefaultScheduler() *Scheduler {
	return NewScheduler(DefaultMaxConcurrent, DefaultWindowLimit, DefaultWindow)
}

// Run executes every task and returns one outcome per task, in submission
// order regardless of completion order. A failed task never cancels its
// siblings; the batch always runs to completion.
func (s *Scheduler) Run(tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, task := range tasks {
		sem <- struct{}{}
		s.admit()
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			defer func() { <-sem }()
			value, err := task()
			outcomes[i] = Outcome{Value: value, Err: err}
		}(i, task)
	}

	wg.Wait()
	return outcomes
}

// admit blocks until one more start fits under the trailing-window cap, then
// records it.
func (s *Scheduler) admit() {
	for {
		s.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-s.window)

		kept := s.starts[:0]
		for _, t := range s.starts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		s.starts = kept

		if len(s.starts) < s.windowLimit {
			s.starts = append(s.starts, now)
			s.mu.Unlock()
			return
		}

		// Oldest recorded start leaves the window first; sleep until then.
		wait := s.starts[0].Sub(cutoff)
		s.mu.Unlock()
		time.Sleep(wait)
	}
}
