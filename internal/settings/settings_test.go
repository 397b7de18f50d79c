package settings

import (
	"path/filepath"
	"testing"

	"killer/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "killer.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaults(t *testing.T) {
	s := openTestStore(t)

	if key, err := s.APIKey(); err != nil || key != "" {
		t.Errorf("APIKey() = %q, %v", key, err)
	}
	if c, err := s.Creativity(); err != nil || c != models.DefaultCreativity {
		t.Errorf("Creativity() = %v, %v", c, err)
	}
	if m, err := s.Mode(); err != nil || m != models.ModeAI {
		t.Errorf("Mode() = %v, %v", m, err)
	}
	if p, err := s.Players(); err != nil || len(p) != 0 {
		t.Errorf("Players() = %v, %v", p, err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	players := []models.Player{{ID: "1", Name: "Ann"}, {ID: "2", Name: "Bob"}}

	if err := s.SetAPIKey("  secret  "); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCreativity(0.25); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(models.ModeManual); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPlayers(players); err != nil {
		t.Fatal(err)
	}

	if key, _ := s.APIKey(); key != "secret" {
		t.Errorf("APIKey() = %q, want trimmed key", key)
	}
	if c, _ := s.Creativity(); c != 0.25 {
		t.Errorf("Creativity() = %v, want 0.25", c)
	}
	if m, _ := s.Mode(); m != models.ModeManual {
		t.Errorf("Mode() = %v, want manual", m)
	}
	got, _ := s.Players()
	if len(got) != 2 || got[0] != players[0] || got[1] != players[1] {
		t.Errorf("Players() = %v, want %v", got, players)
	}

	// overwrite keeps a single row per key
	if err := s.SetCreativity(0.9); err != nil {
		t.Fatal(err)
	}
	if c, _ := s.Creativity(); c != 0.9 {
		t.Errorf("Creativity() after overwrite = %v", c)
	}
}

func TestCreativityIsClamped(t *testing.T) {
	s := openTestStore(t)
	testCases := []struct {
		in   float64
		want float64
	}{
		{in: -2, want: 0},
		{in: 0, want: 0},
		{in: 1, want: 1},
		{in: 7, want: 1},
	}
	for _, tc := range testCases {
		if err := s.SetCreativity(tc.in); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.Creativity(); got != tc.want {
			t.Errorf("SetCreativity(%v) then Creativity() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCorruptValuesFallBack(t *testing.T) {
	s := openTestStore(t)
	_ = s.set(keyCreativity, "very")
	_ = s.set(keyMode, "chaos")
	_ = s.set(keyPlayers, "{not json")

	if c, err := s.Creativity(); err != nil || c != models.DefaultCreativity {
		t.Errorf("Creativity() = %v, %v", c, err)
	}
	if m, err := s.Mode(); err != nil || m != models.ModeAI {
		t.Errorf("Mode() = %v, %v", m, err)
	}
	if p, err := s.Players(); err != nil || p != nil {
		t.Errorf("Players() = %v, %v", p, err)
	}
}

func TestSetMode_RejectsUnknown(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetMode("chaos"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestClearGameData_KeepsSettings(t *testing.T) {
	s := openTestStore(t)
	_ = s.SetAPIKey("secret")
	_ = s.SetMode(models.ModePredefined)
	_ = s.SetPlayers([]models.Player{{ID: "1", Name: "Ann"}})

	if err := s.ClearGameData(); err != nil {
		t.Fatal(err)
	}
	if p, _ := s.Players(); len(p) != 0 {
		t.Errorf("players survived ClearGameData: %v", p)
	}
	if key, _ := s.APIKey(); key != "secret" {
		t.Error("ClearGameData removed the API key")
	}
	if m, _ := s.Mode(); m != models.ModePredefined {
		t.Error("ClearGameData reset the mode")
	}
}

func TestClearAllData(t *testing.T) {
	s := openTestStore(t)
	_ = s.SetAPIKey("secret")
	_ = s.SetCreativity(0.1)
	_ = s.SetPlayers([]models.Player{{ID: "1", Name: "Ann"}})

	if err := s.ClearAllData(); err != nil {
		t.Fatal(err)
	}
	if key, _ := s.APIKey(); key != "" {
		t.Error("API key survived ClearAllData")
	}
	if c, _ := s.Creativity(); c != models.DefaultCreativity {
		t.Error("creativity survived ClearAllData")
	}
	if p, _ := s.Players(); len(p) != 0 {
		t.Error("players survived ClearAllData")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killer.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.SetAPIKey("secret")
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if key, _ := s.APIKey(); key != "secret" {
		t.Errorf("APIKey() after reopen = %q", key)
	}
}
