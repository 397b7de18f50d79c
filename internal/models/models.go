package models

import (
	"fmt"
	"math"
	"strings"
)

// MinPlayers is the smallest roster a game can be generated for.
const MinPlayers = 3

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assignment is one killer's secret brief. Assignments are never persisted.
type Assignment struct {
	Killer  string `json:"killer"`
	Target  string `json:"target"`
	Mission string `json:"mission"`
}

// Mode selects where mission texts come from. It is chosen once per game.
type Mode string

const (
	ModeAI         Mode = "ai"
	ModePredefined Mode = "predefined"
	ModeManual     Mode = "manual"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeAI, ModePredefined, ModeManual:
		return true
	}
	return false
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (want ai, predefined or manual)", s)
	}
	return m, nil
}

type GenerationProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// DefaultCreativity is the generator temperature used until the user picks one.
const DefaultCreativity = 0.7

// ClampCreativity bounds a creativity value to [0, 1].
func ClampCreativity(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return DefaultCreativity
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
