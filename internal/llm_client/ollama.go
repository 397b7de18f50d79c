package llm_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
)

type ollamaProvider struct {
	client *api.Client
	model  string
}

const ollamaDefault = "phi4:latest"

func (p *ollamaProvider) Init(cfg Config) error {
	host := strings.TrimSpace(cfg.OllamaHost)
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return fmt.Errorf("ollama client init: %w", err)
		}
		p.client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return fmt.Errorf("ollama: bad host %q: %w", host, err)
		}
		p.client = api.NewClient(u, nil)
	}
	if strings.TrimSpace(cfg.Model) != "" {
		p.model = cfg.Model
	} else {
		p.model = ollamaDefault
	}
	return nil
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) DefaultModel() string { return ollamaDefault }

func (p *ollamaProvider) AllowedModelOrDefault(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return p.model
	}
	return m
}

func (p *ollamaProvider) request(req GenerateRequest) *api.GenerateRequest {
	stream := false
	return &api.GenerateRequest{
		Model:   p.AllowedModelOrDefault(req.Model),
		System:  req.System,
		Prompt:  req.Prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": req.Temperature},
	}
}

func (p *ollamaProvider) run(ctx context.Context, req *api.GenerateRequest) (string, error) {
	var out strings.Builder
	if err := p.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", classify(p.Name(), err)
	}
	return out.String(), nil
}

func (p *ollamaProvider) GenerateJSON(ctx context.Context, req GenerateRequest, schema any) (string, error) {
	if p.client == nil {
		return "", ErrNotInitialized
	}
	// Force JSON output. If schema supplied, pass it; else "json".
	var fmtRaw json.RawMessage
	if schema != nil {
		b, err := json.Marshal(schema)
		if err != nil {
			return "", fmt.Errorf("ollama marshal schema: %w", err)
		}
		fmtRaw = b
	} else {
		fmtRaw = json.RawMessage(`"json"`)
	}

	r := p.request(req)
	r.Prompt += "\n\nReturn ONLY strict JSON. No extra text."
	r.Format = fmtRaw
	return p.run(ctx, r)
}
