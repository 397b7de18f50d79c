package llm_client

import (
	"context"
	"fmt"
	"strings"
)

type Config struct {
	Backend    string
	Model      string
	APIKey     string
	OllamaHost string
}

// GenerateRequest is one completion call. Temperature is passed through as-is;
// callers clamp it.
type GenerateRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
}

type Provider interface {
	Init(cfg Config) error
	Name() string
	DefaultModel() string
	AllowedModelOrDefault(model string) string
	GenerateJSON(ctx context.Context, req GenerateRequest, schema any) (string, error)
}

// Backends lists the provider names New accepts.
var Backends = []string{"gemini", "ollama"}

// New builds and initializes the provider named by cfg.Backend (default gemini).
func New(cfg Config) (Provider, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "gemini"
	}
	var p Provider
	switch backend {
	case "ollama":
		p = &ollamaProvider{}
	case "gemini":
		p = &geminiProvider{}
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", backend)
	}
	if err := p.Init(cfg); err != nil {
		return nil, err
	}
	return p, nil
}
