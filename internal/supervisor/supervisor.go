package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"killer/internal/executor"
	"killer/internal/logger"
	"killer/internal/mission"
	"killer/internal/models"
)

var ErrStopped = errors.New("generation supervisor stopped")

// Supervisor runs generation tasks one at a time on a background worker.
// Tasks wait in submission order; Submit never blocks.
type Supervisor struct {
	callTimeout time.Duration
	wake        chan struct{}

	mu      sync.Mutex
	pending []*Task
	current *Task
	stopped bool
}

// New returns a supervisor whose tasks bound every source call by callTimeout
// (zero keeps the executor default).
func New(callTimeout time.Duration) *Supervisor {
	return &Supervisor{
		callTimeout: callTimeout,
		wake:        make(chan struct{}, 1),
	}
}

func (s *Supervisor) Start() {
	go func() {
		for {
			t, stopped, ok := s.next()
			if !ok {
				return
			}
			if stopped {
				t.Cancel()
			}
			s.run(t)
		}
	}()
}

// next pops the oldest pending task and marks it current. It waits while the
// queue is empty and reports false once the supervisor is stopped and drained.
func (s *Supervisor) next() (*Task, bool, bool) {
	for {
		s.mu.Lock()
		if len(s.pending) > 0 {
			t := s.pending[0]
			s.pending[0] = nil
			s.pending = s.pending[1:]
			s.current = t
			stopped := s.stopped
			s.mu.Unlock()
			return t, stopped, true
		}
		if s.stopped {
			s.mu.Unlock()
			return nil, false, false
		}
		s.mu.Unlock()
		<-s.wake
	}
}

func (s *Supervisor) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Submit queues a generation pass. Results arrive on the task's Events channel.
func (s *Supervisor) Submit(players []models.Player, src mission.Source) *Task {
	task := newTask(uuid.New().String()[:8], players, src)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		task.finish(Result{TaskID: task.ID, Status: StatusCancelled, Err: ErrStopped})
		return task
	}
	s.pending = append(s.pending, task)
	s.mu.Unlock()

	s.signal()
	return task
}

// Stop cancels the running task and refuses new ones. Queued tasks still
// drain, each finishing as cancelled.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	current := s.current
	s.mu.Unlock()

	if current != nil {
		current.Cancel()
	}
	s.signal()
}

func (s *Supervisor) run(t *Task) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		s.mu.Lock()
		if s.current == t {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	if !t.begin(cancel) {
		logger.Log.Info("generation cancelled before start", zap.String("task", t.ID))
		t.finish(Result{TaskID: t.ID, Status: StatusCancelled, Err: context.Canceled})
		return
	}

	logger.Log.Info("generation started",
		zap.String("task", t.ID),
		zap.String("mode", string(t.Mode)),
		zap.Int("players", len(t.players)),
	)

	gen, gm, err := executor.Generate(ctx, t.players, t.src, executor.Options{
		CallTimeout: s.callTimeout,
		OnProgress:  t.progress,
	})
	if gm != nil {
		gm.TaskID = t.ID
	}

	res := Result{TaskID: t.ID, Err: err, Metrics: gm}
	if gen != nil {
		res.Players = gen.Players
		res.Assignments = gen.Assignments
	}
	switch {
	case err == nil:
		res.Status = StatusSucceeded
		logger.Log.Info("generation succeeded",
			zap.String("task", t.ID),
			zap.Int64("duration_ms", gm.DurationMs),
		)
	case errors.Is(err, context.Canceled):
		res.Status = StatusCancelled
		logger.Log.Info("generation cancelled", zap.String("task", t.ID))
	default:
		res.Status = StatusFailed
		completed := 0
		if gm != nil {
			completed = gm.Completed()
		}
		logger.Log.Warn("generation failed",
			zap.String("task", t.ID),
			zap.Int("completed", completed),
			zap.Error(err),
		)
	}
	t.finish(res)
}
