package display

import (
	"fmt"
	"strings"

	"killer/internal/models"
)

func FormatTurn(name string) string {
	return fmt.Sprintf("It's %s's turn.\nMake sure nobody else is looking.", name)
}

// FormatMission shows the target and, only when visible, the mission text.
func FormatMission(a models.Assignment, visible bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Your target: %s\n", a.Target))
	sb.WriteString(rule + "\n")
	if visible {
		sb.WriteString("Your mission:\n  " + a.Mission + "\n")
	} else {
		sb.WriteString("Your mission: [hidden]\n")
	}
	sb.WriteString(rule)
	return sb.String()
}

func FormatMemorized(isLast bool) string {
	if isLast {
		return "Mission memorized.\nEvery player has their mission!"
	}
	return "Mission memorized.\nPass the device to the next player."
}

func FormatGameStarted(players int) string {
	return fmt.Sprintf("The game has started with %d players.\nGood luck, and trust nobody.", players)
}
