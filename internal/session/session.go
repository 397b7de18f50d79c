package session

import (
	"errors"
	"fmt"

	"killer/internal/models"
)

var (
	ErrNoMissions  = errors.New("a session needs at least one mission")
	ErrGameStarted = errors.New("the game has already started")
)

// Session is one game in progress. It is a value: every transition returns a
// new Session and leaves the receiver untouched.
type Session struct {
	players     []models.Player
	missions    []models.Assignment
	cursor      int
	revealed    bool
	gameStarted bool
}

// New starts a reveal round over missions, which are kept in generation order.
// players must be in the same order: missions[i] belongs to players[i].
func New(players []models.Player, missions []models.Assignment) (Session, error) {
	if len(missions) == 0 {
		return Session{}, ErrNoMissions
	}
	if len(players) != len(missions) {
		return Session{}, fmt.Errorf("%d missions for %d players", len(missions), len(players))
	}
	for i, p := range players {
		if p.Name != missions[i].Killer {
			return Session{}, fmt.Errorf("mission %d belongs to %s, not %s", i+1, missions[i].Killer, p.Name)
		}
	}
	return Session{
		players:  append([]models.Player(nil), players...),
		missions: append([]models.Assignment(nil), missions...),
	}, nil
}

func (s Session) Players() []models.Player {
	return append([]models.Player(nil), s.players...)
}

func (s Session) Missions() []models.Assignment {
	return append([]models.Assignment(nil), s.missions...)
}

func (s Session) Len() int { return len(s.missions) }

func (s Session) CurrentPlayerIndex() int { return s.cursor }

func (s Session) IsRevealed() bool { return s.revealed }

func (s Session) GameStarted() bool { return s.gameStarted }

// Current is the assignment of the player whose turn it is. It reports false
// once the game has started.
func (s Session) Current() (models.Assignment, bool) {
	if s.gameStarted || s.cursor < 0 || s.cursor >= len(s.missions) {
		return models.Assignment{}, false
	}
	return s.missions[s.cursor], true
}

func (s Session) IsLast() bool {
	return !s.gameStarted && s.cursor == len(s.missions)-1
}

// Advance hands the device to the next player, or starts the game after the
// last one. The mission is always hidden afterwards.
func (s Session) Advance() (Session, error) {
	if s.gameStarted {
		return s, ErrGameStarted
	}
	next := s
	next.revealed = false
	if s.IsLast() {
		next.gameStarted = true
		return next, nil
	}
	next.cursor++
	return next, nil
}

func (s Session) Reveal() Session {
	if s.gameStarted {
		return s
	}
	s.revealed = true
	return s
}

func (s Session) Hide() Session {
	s.revealed = false
	return s
}
