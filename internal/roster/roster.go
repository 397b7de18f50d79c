package roster

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"killer/internal/models"
)

var (
	ErrEmptyName     = errors.New("player name cannot be empty")
	ErrDuplicateName = errors.New("a player with this name already exists")
)

// Roster is the ordered list of players registered for the next game.
type Roster struct {
	players []models.Player
}

// New starts a roster from a saved player list. Entries with a blank or
// repeated name are skipped. Missing and repeated ids are replaced, since
// targets are assigned by id.
func New(saved []models.Player) *Roster {
	r := &Roster{}
	ids := make(map[string]bool, len(saved))
	for _, p := range saved {
		name := strings.TrimSpace(p.Name)
		if name == "" || r.has(name) {
			continue
		}
		if p.ID == "" || ids[p.ID] {
			p.ID = uuid.NewString()
		}
		ids[p.ID] = true
		p.Name = name
		r.players = append(r.players, p)
	}
	return r
}

// Add registers a player. Names are trimmed and compared case-insensitively.
func (r *Roster) Add(name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, ErrEmptyName
	}
	if r.has(name) {
		return models.Player{}, ErrDuplicateName
	}
	p := models.Player{ID: uuid.NewString(), Name: name}
	r.players = append(r.players, p)
	return p, nil
}

func (r *Roster) Remove(id string) bool {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the player whose name matches, ignoring case.
func (r *Roster) Find(name string) (models.Player, bool) {
	name = strings.TrimSpace(name)
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return models.Player{}, false
}

func (r *Roster) Players() []models.Player {
	return append([]models.Player(nil), r.players...)
}

func (r *Roster) Len() int { return len(r.players) }

// CanGenerate reports whether there are enough players to start a game.
func (r *Roster) CanGenerate() bool {
	return len(r.players) >= models.MinPlayers
}

func (r *Roster) Clear() {
	r.players = nil
}

func (r *Roster) has(name string) bool {
	_, ok := r.Find(name)
	return ok
}
