package supervisor

import (
	"context"
	"sync"

	"killer/internal/mission"
	"killer/internal/models"
)

const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Task is one queued generation pass.
type Task struct {
	ID   string
	Mode models.Mode

	players []models.Player
	src     mission.Source
	events  chan Event

	mu        sync.Mutex
	state     string
	cancel    context.CancelFunc
	cancelled bool
}

func newTask(id string, players []models.Player, src mission.Source) *Task {
	t := &Task{
		ID:      id,
		players: append([]models.Player(nil), players...),
		src:     src,
		state:   StatusPending,
		// one slot per progress tick plus the final event, so the worker never blocks
		events: make(chan Event, len(players)+1),
	}
	if src != nil {
		t.Mode = src.Mode()
	}
	return t
}

// Events yields the progress ticks in completion order followed by exactly
// one EventDone. The channel is closed afterwards.
func (t *Task) Events() <-chan Event {
	return t.events
}

func (t *Task) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Cancel stops the task. A pending task finishes as cancelled without calling
// its source; a running one stops before its next mission.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	if t.cancel != nil {
		t.cancel()
	}
}

// Wait drains the events, forwarding progress to onProgress, and returns the result.
func (t *Task) Wait(onProgress func(models.GenerationProgress)) Result {
	var res Result
	for ev := range t.events {
		switch ev.Kind {
		case EventProgress:
			if onProgress != nil {
				onProgress(ev.Progress)
			}
		case EventDone:
			res = *ev.Result
		}
	}
	return res
}

func (t *Task) begin(cancel context.CancelFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	t.state = StatusRunning
	t.cancel = cancel
	return true
}

func (t *Task) progress(p models.GenerationProgress) {
	t.events <- Event{Kind: EventProgress, Progress: p}
}

func (t *Task) finish(res Result) {
	t.mu.Lock()
	t.state = res.Status
	t.cancel = nil
	t.mu.Unlock()

	t.events <- Event{Kind: EventDone, Result: &res}
	close(t.events)
}
