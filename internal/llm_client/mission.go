package llm_client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"killer/internal/models"
)

// FallbackMission is used when the model answers with an empty mission field.
const FallbackMission = "Secret mission activated!"

const missionInstruction = "You are the game master of a game of Killer. Write a dare for a player who must eliminate their target. " +
	"The dare must be funny, slightly absurd, and doable in public without being dangerous or inappropriate. " +
	"The goal is for the target to perform a specific action or say a specific sentence without realizing it is a trap. " +
	"Answer format: JSON only, with the single field 'mission'."

var missionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"mission": map[string]any{"type": "string"},
	},
	"required": []string{"mission"},
}

// MissionGenerator turns a Provider into the game's external mission generator.
type MissionGenerator struct {
	provider   Provider
	model      string
	creativity float64
}

func NewMissionGenerator(p Provider, model string, creativity float64) *MissionGenerator {
	return &MissionGenerator{
		provider:   p,
		model:      model,
		creativity: models.ClampCreativity(creativity),
	}
}

func (g *MissionGenerator) Creativity() float64 { return g.creativity }

func (g *MissionGenerator) GenerateMission(ctx context.Context, killer, target string) (string, error) {
	if g.provider == nil {
		return "", ErrNotInitialized
	}
	out, err := g.provider.GenerateJSON(ctx, GenerateRequest{
		System:      missionInstruction,
		Prompt:      buildMissionPrompt(killer, target),
		Model:       g.model,
		Temperature: g.creativity,
	}, missionSchema)
	if err != nil {
		return "", err
	}
	return parseMission(g.provider.Name(), out)
}

func buildMissionPrompt(killer, target string) string {
	return fmt.Sprintf("Player %q must eliminate %q. Write a creative and funny dare.", killer, target)
}

func parseMission(provider, raw string) (string, error) {
	cleanJson := strings.TrimSpace(raw)
	cleanJson = strings.TrimPrefix(cleanJson, "```json")
	cleanJson = strings.TrimPrefix(cleanJson, "```")
	cleanJson = strings.TrimSuffix(cleanJson, "```")
	cleanJson = strings.TrimSpace(cleanJson)

	var content struct {
		Mission string `json:"mission"`
	}
	if err := json.Unmarshal([]byte(cleanJson), &content); err != nil {
		return "", &GenerationError{
			Provider: provider,
			Message:  "could not read the generated mission",
			Err:      fmt.Errorf("parse mission JSON: %w (raw response: %s)", err, raw),
		}
	}
	if m := strings.TrimSpace(content.Mission); m != "" {
		return m, nil
	}
	return FallbackMission, nil
}
