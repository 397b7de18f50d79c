package mission

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestShuffle_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	testCases := []struct {
		name  string
		input []int
	}{
		{name: "Empty input", input: []int{}},
		{name: "Single element", input: []int{7}},
		{name: "Two elements", input: []int{1, 2}},
		{name: "Many elements", input: []int{5, 3, 9, 1, 1, 4, 8, 2, 6, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := slices.Clone(tc.input)
			for range 50 {
				out := Shuffle(tc.input, rng)
				if len(out) != len(tc.input) {
					t.Fatalf("length changed: got %d, want %d", len(out), len(tc.input))
				}
				sortedOut := slices.Clone(out)
				slices.Sort(sortedOut)
				sortedIn := slices.Clone(tc.input)
				slices.Sort(sortedIn)
				if !slices.Equal(sortedOut, sortedIn) {
					t.Fatalf("output %v is not a permutation of %v", out, tc.input)
				}
			}
			if !slices.Equal(tc.input, original) {
				t.Errorf("input was mutated: got %v, want %v", tc.input, original)
			}
		})
	}
}

func TestShuffle_ReturnsCopy(t *testing.T) {
	in := []string{"only"}
	out := Shuffle(in, nil)
	out[0] = "changed"
	if in[0] != "only" {
		t.Errorf("Shuffle must not alias its input, input became %q", in[0])
	}
}

func TestShuffle_RoughlyUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	in := []int{0, 1, 2}
	counts := map[[3]int]int{}
	const rounds = 60000
	for range rounds {
		out := Shuffle(in, rng)
		counts[[3]int{out[0], out[1], out[2]}]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations, saw %d", len(counts))
	}
	for perm, c := range counts {
		// Expected 10000 each; allow a generous 10% band.
		if c < 9000 || c > 11000 {
			t.Errorf("permutation %v drawn %d times, expected about %d", perm, c, rounds/6)
		}
	}
}
