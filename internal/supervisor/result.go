package supervisor

import (
	"killer/internal/metrics"
	"killer/internal/models"
)

type EventKind int

const (
	EventProgress EventKind = iota
	EventDone
)

// Event is either one progress tick or the terminal result of a task.
type Event struct {
	Kind     EventKind
	Progress models.GenerationProgress
	Result   *Result
}

type Result struct {
	TaskID      string                     `json:"task_id"`
	Status      string                     `json:"status"`
	Players     []models.Player            `json:"-"`
	Assignments []models.Assignment        `json:"-"`
	Err         error                      `json:"-"`
	Metrics     *metrics.GenerationMetrics `json:"metrics,omitempty"`
}
