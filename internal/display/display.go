package display

import (
	"errors"
	"fmt"
	"strings"

	"killer/internal/executor"
	"killer/internal/llm_client"
	"killer/internal/models"
)

const (
	rule        = "--------------------------------------------------"
	progressBar = 30
)

func FormatHome() string {
	var sb strings.Builder
	sb.WriteString("KILLER\n")
	sb.WriteString(rule + "\n")
	sb.WriteString("Everyone gets a secret target and a secret mission.\n")
	sb.WriteString("Pass the device around, read yours, memorize it.\n\n")
	sb.WriteString("  1) Start a game\n")
	sb.WriteString("  2) Settings\n")
	sb.WriteString("  q) Quit")
	return sb.String()
}

func FormatRoster(players []models.Player) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Players (%d):\n", len(players)))
	if len(players) == 0 {
		sb.WriteString("  (nobody yet)\n")
	}
	for i, p := range players {
		sb.WriteString(fmt.Sprintf("  %2d. %s\n", i+1, p.Name))
	}
	if missing := models.MinPlayers - len(players); missing > 0 {
		sb.WriteString(fmt.Sprintf("Add %d more player(s) to start.", missing))
	} else {
		sb.WriteString("Ready to generate missions.")
	}
	return sb.String()
}

// SettingsView is what the settings screen shows. APIKey is masked on output.
type SettingsView struct {
	Mode       models.Mode
	APIKey     string
	Creativity float64
	Backend    string
	Model      string
}

func FormatSettings(v SettingsView) string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	sb.WriteString(fmt.Sprintf("  mode        %s\n", v.Mode))
	sb.WriteString(fmt.Sprintf("  api key     %s\n", MaskKey(v.APIKey)))
	sb.WriteString(fmt.Sprintf("  creativity  %.1f\n", v.Creativity))
	model := v.Model
	if model == "" {
		model = "default"
	}
	sb.WriteString(fmt.Sprintf("  backend     %s (%s)", v.Backend, model))
	return sb.String()
}

// MaskKey keeps the last four characters of a credential.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// FormatProgress renders "[#####.....] 2/5".
func FormatProgress(p models.GenerationProgress) string {
	filled := 0
	if p.Total > 0 {
		filled = p.Current * progressBar / p.Total
	}
	filled = min(max(filled, 0), progressBar)
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat("#", filled), strings.Repeat(".", progressBar-filled), p.Current, p.Total)
}

func FormatManualSlot(slot, total int, text string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mission %d of %d\n", slot+1, total))
	if text != "" {
		sb.WriteString(fmt.Sprintf("Current text: %s\n", text))
	}
	sb.WriteString("Type the mission, or :prev / :next / :cancel.")
	return sb.String()
}

// FormatGenerationError explains a failed generation and what to do next.
func FormatGenerationError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, llm_client.ErrUnauthorized), errors.Is(err, llm_client.ErrMissingAPIKey):
		return "The API key was rejected or is missing. Check it in the settings."
	case llm_client.IsQuota(err):
		return llm_client.QuotaMarker + ": the API quota for this key is exhausted.\n" +
			"You can switch to the predefined missions and keep your players."
	case errors.Is(err, executor.ErrNotEnoughPlayers):
		return fmt.Sprintf("At least %d players are needed.", models.MinPlayers)
	}
	return fmt.Sprintf("Mission generation failed: %v", err)
}
