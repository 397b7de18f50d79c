package mission

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptySlot = errors.New("mission text is empty")

// ManualCollector walks a human through writing one mission per player, one
// slot at a time. Going back to edit an earlier slot keeps every text typed so far.
type ManualCollector struct {
	texts   []string
	current int
}

func NewManualCollector(n int) *ManualCollector {
	if n < 0 {
		n = 0
	}
	return &ManualCollector{texts: make([]string, n)}
}

// Slot returns the zero-based slot being edited and the number of slots.
func (c *ManualCollector) Slot() (int, int) { return c.current, len(c.texts) }

func (c *ManualCollector) IsLast() bool { return c.current == len(c.texts)-1 }

func (c *ManualCollector) Text() string {
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[c.current]
}

func (c *ManualCollector) SetText(s string) {
	if len(c.texts) == 0 {
		return
	}
	c.texts[c.current] = s
}

// Filled reports whether slot i holds a non-blank text.
func (c *ManualCollector) Filled(i int) bool {
	return i >= 0 && i < len(c.texts) && strings.TrimSpace(c.texts[i]) != ""
}

// Next moves to the following slot. The current slot must be filled. On the
// last slot Next validates but stays put; call Finalize to finish.
func (c *ManualCollector) Next() error {
	if !c.Filled(c.current) {
		return fmt.Errorf("mission %d: %w", c.current+1, ErrEmptySlot)
	}
	if c.current < len(c.texts)-1 {
		c.current++
	}
	return nil
}

func (c *ManualCollector) Previous() {
	if c.current > 0 {
		c.current--
	}
}

// Finalize returns the N trimmed texts, or an error naming the first empty slot.
func (c *ManualCollector) Finalize() ([]string, error) {
	out := make([]string, len(c.texts))
	for i, t := range c.texts {
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, fmt.Errorf("mission %d: %w", i+1, ErrEmptySlot)
		}
		out[i] = s
	}
	return out, nil
}
