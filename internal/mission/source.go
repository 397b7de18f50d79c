package mission

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"killer/internal/models"
)

var (
	ErrEmptyPool      = errors.New("mission pool is empty")
	ErrNoGenerator    = errors.New("no mission generator configured")
	ErrMissingMission = errors.New("no mission text for this slot")
)

// DefaultPoolDelay keeps the predefined mode at a "generating..." pace.
const DefaultPoolDelay = 100 * time.Millisecond

// Source supplies the mission text for the i-th killer/target pair of a game.
// A Source is built once per game and picks the derangement scheme it needs.
type Source interface {
	Mode() models.Mode
	Assigner() Assigner
	Mission(ctx context.Context, index int, killer, target models.Player) (string, error)
}

// Generator is the external text generator: killer and target names in, one
// short mission out. Creativity is a property of the generator.
type Generator interface {
	GenerateMission(ctx context.Context, killer, target string) (string, error)
}

// GeneratorSource asks an external generator for every pair. Failures are
// returned as-is so the caller can tell a bad key from an exhausted quota.
type GeneratorSource struct {
	gen Generator
}

func NewGeneratorSource(gen Generator) (*GeneratorSource, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}
	return &GeneratorSource{gen: gen}, nil
}

func (s *GeneratorSource) Mode() models.Mode  { return models.ModeAI }
func (s *GeneratorSource) Assigner() Assigner { return RandomAssigner{} }

func (s *GeneratorSource) Mission(ctx context.Context, _ int, killer, target models.Player) (string, error) {
	return s.gen.GenerateMission(ctx, killer.Name, target.Name)
}

// PoolSource deals predefined missions from a pool shuffled once per game.
// Entries only repeat after the whole pool has been dealt.
type PoolSource struct {
	missions []string
	delay    time.Duration
}

func NewPoolSource(pool []string, delay time.Duration, rng *rand.Rand) (*PoolSource, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return &PoolSource{missions: Shuffle(pool, rng), delay: delay}, nil
}

func (s *PoolSource) Mode() models.Mode  { return models.ModePredefined }
func (s *PoolSource) Assigner() Assigner { return RandomAssigner{} }

func (s *PoolSource) Mission(ctx context.Context, index int, _, _ models.Player) (string, error) {
	if err := sleep(ctx, s.delay); err != nil {
		return "", err
	}
	return s.missions[index%len(s.missions)], nil
}

// ManualSource hands out texts typed in by the players, shuffled so that the
// author of a mission does not know who receives it.
type ManualSource struct {
	texts []string
}

func NewManualSource(texts []string, rng *rand.Rand) *ManualSource {
	return &ManualSource{texts: Shuffle(texts, rng)}
}

func (s *ManualSource) Mode() models.Mode  { return models.ModeManual }
func (s *ManualSource) Assigner() Assigner { return CycleAssigner{} }
func (s *ManualSource) Len() int           { return len(s.texts) }

func (s *ManualSource) Mission(_ context.Context, index int, _, _ models.Player) (string, error) {
	if index < 0 || index >= len(s.texts) {
		return "", fmt.Errorf("slot %d of %d: %w", index+1, len(s.texts), ErrMissingMission)
	}
	return s.texts[index], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
