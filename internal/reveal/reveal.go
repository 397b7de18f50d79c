package reveal

import (
	"errors"

	"killer/internal/session"
)

var (
	ErrWrongState = errors.New("action not allowed in the current reveal state")
	ErrNotSeen    = errors.New("the mission has not been revealed yet")
)

type State int

const (
	StateWaiting State = iota
	StateHidden
	StateRevealed
	StateMemorized
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateHidden:
		return "hidden"
	case StateRevealed:
		return "revealed"
	case StateMemorized:
		return "memorized"
	}
	return "unknown"
}

// Modality is the input style of the current turn, fixed by its first gesture.
type Modality int

const (
	ModalityUnset Modality = iota
	// ModalityTouch shows the mission only while the press is held.
	ModalityTouch
	// ModalityPointer toggles the mission on each click.
	ModalityPointer
)

type Outcome int

const (
	OutcomeNextPlayer Outcome = iota + 1
	OutcomeGameStarted
)

// Machine gates one player's turn: confirm identity, reveal, memorize,
// continue. One Machine serves the whole round and is reset between turns, so
// at most one mission is ever visible.
type Machine struct {
	state    State
	modality Modality
	seen     bool
}

func New() *Machine {
	return &Machine{}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Modality() Modality { return m.modality }

// Visible reports whether the mission text may be on screen right now.
func (m *Machine) Visible() bool { return m.state == StateRevealed }

// Seen reports whether the mission was shown at least once this turn.
func (m *Machine) Seen() bool { return m.seen }

// ConfirmIdentity is the "it's me" step.
func (m *Machine) ConfirmIdentity() error {
	if m.state != StateWaiting {
		return ErrWrongState
	}
	m.state = StateHidden
	return nil
}

func (m *Machine) TouchStart() error {
	if err := m.gesture(); err != nil {
		return err
	}
	if m.modality == ModalityUnset {
		m.modality = ModalityTouch
	}
	if m.modality != ModalityTouch {
		return nil
	}
	m.show()
	return nil
}

func (m *Machine) TouchEnd() error {
	if err := m.gesture(); err != nil {
		return err
	}
	if m.modality == ModalityTouch {
		m.state = StateHidden
	}
	return nil
}

func (m *Machine) Click() error {
	if err := m.gesture(); err != nil {
		return err
	}
	if m.modality == ModalityUnset {
		m.modality = ModalityPointer
	}
	if m.modality != ModalityPointer {
		return nil
	}
	if m.state == StateRevealed {
		m.state = StateHidden
	} else {
		m.show()
	}
	return nil
}

// Memorize hides the mission for good. It needs the mission to have been seen.
func (m *Machine) Memorize() error {
	if m.state != StateHidden && m.state != StateRevealed {
		return ErrWrongState
	}
	if !m.seen {
		return ErrNotSeen
	}
	m.state = StateMemorized
	return nil
}

// Continue advances s to the next player, or starts the game after the last
// one, and resets the machine for the next turn.
func (m *Machine) Continue(s session.Session) (session.Session, Outcome, error) {
	if m.state != StateMemorized {
		return s, 0, ErrWrongState
	}
	next, err := s.Advance()
	if err != nil {
		return s, 0, err
	}
	*m = Machine{}
	if next.GameStarted() {
		return next, OutcomeGameStarted, nil
	}
	return next, OutcomeNextPlayer, nil
}

// Sync mirrors the machine's visibility onto s.
func (m *Machine) Sync(s session.Session) session.Session {
	if m.Visible() {
		return s.Reveal()
	}
	return s.Hide()
}

func (m *Machine) gesture() error {
	if m.state != StateHidden && m.state != StateRevealed {
		return ErrWrongState
	}
	return nil
}

func (m *Machine) show() {
	m.state = StateRevealed
	m.seen = true
}
