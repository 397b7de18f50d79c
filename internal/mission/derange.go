package mission

import (
	"math/rand/v2"

	"killer/internal/models"
)

// maxRepairRounds bounds the random repair passes before the fallback.
const maxRepairRounds = 100

// Pair is one killer->target edge of a derangement.
type Pair struct {
	Killer models.Player
	Target models.Player
}

// Assigner turns an already shuffled player list into killer->target pairs,
// index-aligned with players. Every player appears once as killer and once as
// target, and nobody targets themself. Fewer than two players yields nil.
type Assigner interface {
	Assign(players []models.Player, rng *rand.Rand) []Pair
	Name() string
}

// CycleAssigner targets the next player in order, wrapping the last back to
// the first. The result is a single N-cycle.
type CycleAssigner struct{}

func (CycleAssigner) Name() string { return "cycle" }

func (CycleAssigner) Assign(players []models.Player, _ *rand.Rand) []Pair {
	n := len(players)
	if n <= 1 {
		return nil
	}
	pairs := make([]Pair, n)
	for i, p := range players {
		pairs[i] = Pair{Killer: p, Target: players[(i+1)%n]}
	}
	return pairs
}

// RandomAssigner pairs players with an independent permutation of themselves
// and repairs fixed points. Unlike the cycle, a player cannot infer their
// target's target from the generation order.
type RandomAssigner struct{}

func (RandomAssigner) Name() string { return "random" }

func (RandomAssigner) Assign(players []models.Player, rng *rand.Rand) []Pair {
	n := len(players)
	if n <= 1 {
		return nil
	}

	targets := Shuffle(players, rng)
	for round := 0; round < maxRepairRounds; round++ {
		if !repairRandom(players, targets, rng) {
			return zip(players, targets)
		}
	}

	// Reshuffle and push every fixed point onto its neighbour. Swapping i with
	// i+1 leaves neither position fixed when IDs are unique, so one pass ends it.
	targets = Shuffle(players, rng)
	repairAdjacent(players, targets)
	return zip(players, targets)
}

func repairAdjacent(players, targets []models.Player) {
	n := len(players)
	for i := range players {
		if targets[i].ID == players[i].ID {
			next := (i + 1) % n
			targets[i], targets[next] = targets[next], targets[i]
		}
	}
}

// repairRandom swaps every self-targeting slot with a random slot and reports
// whether any fixed point was seen.
func repairRandom(players, targets []models.Player, rng *rand.Rand) bool {
	found := false
	for i := range players {
		if targets[i].ID != players[i].ID {
			continue
		}
		found = true
		j := intN(rng, len(players))
		if j != i {
			targets[i], targets[j] = targets[j], targets[i]
		}
	}
	return found
}

func zip(players, targets []models.Player) []Pair {
	pairs := make([]Pair, len(players))
	for i := range players {
		pairs[i] = Pair{Killer: players[i], Target: targets[i]}
	}
	return pairs
}
