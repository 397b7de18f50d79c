package executor

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"killer/internal/metrics"
	"killer/internal/mission"
	"killer/internal/models"
)

const defaultCallTimeout = 30 * time.Second

var ErrNotEnoughPlayers = errors.New("at least two players are needed to assign targets")

type Options struct {
	// CallTimeout bounds each mission source call. Zero means the default.
	CallTimeout time.Duration
	// Rand drives the player shuffle and the derangement. Nil means a fresh
	// crypto-seeded generator.
	Rand *rand.Rand
	// OnProgress is called after every completed mission, in order.
	OnProgress func(models.GenerationProgress)
}

// Generation is the outcome of a successful pass. Players holds the shuffled
// generation order and Assignments[i] belongs to Players[i].
type Generation struct {
	Players     []models.Player
	Assignments []models.Assignment
}

// Generate runs one generation pass: shuffle the players, pair killers with
// targets, then fetch one mission per pair in shuffled order. Pairs are
// processed strictly one at a time and the first failure aborts the pass;
// no partial list is ever returned.
func Generate(ctx context.Context, players []models.Player, src mission.Source, opts Options) (*Generation, *metrics.GenerationMetrics, error) {
	gm := &metrics.GenerationMetrics{Players: len(players), Start: time.Now()}
	defer func() {
		gm.End = time.Now()
		gm.Finalize()
	}()

	if src == nil {
		return nil, gm, errors.New("no mission source")
	}
	gm.Mode = string(src.Mode())
	gm.Assigner = src.Assigner().Name()

	if len(players) < 2 {
		return nil, gm, ErrNotEnoughPlayers
	}
	if sized, ok := src.(interface{ Len() int }); ok && sized.Len() != len(players) {
		return nil, gm, fmt.Errorf("%d missions for %d players", sized.Len(), len(players))
	}

	rng := opts.Rand
	if rng == nil {
		rng = mission.NewRand()
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	shuffled := mission.Shuffle(players, rng)
	pairs := src.Assigner().Assign(shuffled, rng)
	total := len(pairs)

	gen := &Generation{
		Players:     make([]models.Player, 0, total),
		Assignments: make([]models.Assignment, 0, total),
	}
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, gm, err
		}

		mm := metrics.MissionMetrics{Index: i, Start: time.Now()}
		text, err := callSource(ctx, src, timeout, i, pair)
		mm.End = time.Now()
		mm.Finalize()
		mm.Success = err == nil
		if err != nil {
			mm.Err = err.Error()
		}
		gm.Missions = append(gm.Missions, mm)

		if err != nil {
			return nil, gm, fmt.Errorf("mission %d of %d: %w", i+1, total, err)
		}

		gen.Players = append(gen.Players, pair.Killer)
		gen.Assignments = append(gen.Assignments, models.Assignment{
			Killer:  pair.Killer.Name,
			Target:  pair.Target.Name,
			Mission: text,
		})
		if opts.OnProgress != nil {
			opts.OnProgress(models.GenerationProgress{Current: i + 1, Total: total})
		}
	}

	gm.Succeeded = true
	return gen, gm, nil
}

func callSource(ctx context.Context, src mission.Source, timeout time.Duration, i int, pair mission.Pair) (text string, rerr error) {
	// Panic safety -> convert to error so the pass aborts cleanly
	defer func() {
		if rec := recover(); rec != nil {
			rerr = fmt.Errorf("panic in mission source: %v", rec)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.Mission(callCtx, i, pair.Killer, pair.Target)
}
