package mission

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed missions.json
var builtinPool []byte

// BuiltinPool returns the predefined missions shipped with the binary.
func BuiltinPool() ([]string, error) {
	pool, err := parsePool(builtinPool)
	if err != nil {
		return nil, fmt.Errorf("builtin mission pool: %w", err)
	}
	return pool, nil
}

/*
LoadPoolFromFile reads a predefined mission pool from a JSON file. Two shapes
are accepted:

 1. Object (preferred):
    { "missions": [ "text", "text", ... ] }

 2. Bare array:
    [ "text", "text", ... ]

Blank entries are dropped and the remaining texts are trimmed.
*/
func LoadPoolFromFile(path string) ([]string, error) {
	clean := filepath.Clean(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read mission pool %s: %w", clean, err)
	}
	pool, err := parsePool(data)
	if err != nil {
		return nil, fmt.Errorf("mission pool %s: %w", clean, err)
	}
	return pool, nil
}

func parsePool(data []byte) ([]string, error) {
	var raw []string

	var obj struct {
		Missions []string `json:"missions"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		raw = obj.Missions
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unrecognized format (want {\"missions\": [...]} or [...])")
	}

	pool := make([]string, 0, len(raw))
	for _, m := range raw {
		if s := strings.TrimSpace(m); s != "" {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return pool, nil
}
