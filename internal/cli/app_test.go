package cli

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"killer/internal/config"
	"killer/internal/listener"
	"killer/internal/llm_client"
	"killer/internal/mission"
	"killer/internal/models"
	"killer/internal/settings"
)

// scriptTerm replays input lines and records everything printed.
type scriptTerm struct {
	mu      sync.Mutex
	lines   []string
	out     strings.Builder
	prompts []string
}

func (s *scriptTerm) ReadLine(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", listener.ErrClosed
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptTerm) ReadSecret(prompt string) (string, error) {
	return s.ReadLine(prompt)
}

func (s *scriptTerm) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.WriteString(line + "\n")
}

func (s *scriptTerm) Clear() {
	s.Println("<clear>")
}

func (s *scriptTerm) output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

type stubGenerator struct {
	err error
}

func (g stubGenerator) GenerateMission(_ context.Context, killer, target string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "Make " + target + " say banana", nil
}

// revealAll is the input of a full reveal round: confirm, show, memorize, continue.
func revealAll(n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, "", "", "m", "")
	}
	return out
}

func script(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func newTestApp(t *testing.T, lines []string) (*App, *scriptTerm, *settings.Store) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")

	store, err := settings.Open(filepath.Join(t.TempDir(), "killer.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{Backend: "gemini", CallTimeout: time.Second}
	term := &scriptTerm{lines: lines}
	app, err := newApp(cfg, store, []string{"Hop", "Skip", "Jump", "Crawl"}, term)
	if err != nil {
		t.Fatal(err)
	}
	return app, term, store
}

func runApp(t *testing.T, app *App, term *scriptTerm) {
	t.Helper()
	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v\n%s", err, term.output())
	}
	if len(term.lines) != 0 {
		t.Fatalf("%d input lines left unread: %v\n%s", len(term.lines), term.lines, term.output())
	}
}

func TestApp_PredefinedGame(t *testing.T) {
	lines := script(
		[]string{"1", "Ann", "Bob", "Cid", ":go"},
		revealAll(3),
		[]string{"n", "q"},
	)
	app, term, store := newTestApp(t, lines)
	if err := store.SetMode(models.ModePredefined); err != nil {
		t.Fatal(err)
	}

	runApp(t, app, term)

	out := term.output()
	for _, want := range []string{"It's Ann's turn", "It's Bob's turn", "It's Cid's turn", "3/3", "The game has started with 3 players"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q", want)
		}
	}
	if n := strings.Count(out, "Your mission:\n"); n != 3 {
		t.Errorf("mission text shown %d times, want once per player", n)
	}
	if players, _ := store.Players(); len(players) != 0 {
		t.Errorf("a new game must clear the players, got %v", players)
	}
	checkTurns(t, out, 3)
}

// checkTurns reads each "It's X's turn" and the target shown to X next.
func checkTurns(t *testing.T, out string, n int) {
	t.Helper()
	var turn string
	seen := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		if name, ok := strings.CutPrefix(line, "It's "); ok {
			turn = strings.TrimSuffix(name, "'s turn.")
			continue
		}
		if target, ok := strings.CutPrefix(line, "Your target: "); ok && turn != "" {
			if target == turn {
				t.Errorf("%s was shown themself as target", turn)
			}
			seen[turn] = true
		}
	}
	if len(seen) != n {
		t.Errorf("%d players saw their mission, want %d", len(seen), n)
	}
}

func TestApp_QuotaOffersPredefined(t *testing.T) {
	lines := script(
		[]string{"1", "Ann", "Bob", "Cid", ":go", "y"},
		revealAll(3),
		[]string{"q"},
	)
	app, term, store := newTestApp(t, lines)
	_ = store.SetAPIKey("key")
	app.newGenerator = func(llm_client.Config, float64) (mission.Generator, error) {
		return stubGenerator{err: llm_client.ErrQuotaExceeded}, nil
	}

	runApp(t, app, term)

	if !strings.Contains(term.output(), llm_client.QuotaMarker) {
		t.Error("quota error was not reported")
	}
	if m, _ := store.Mode(); m != models.ModePredefined {
		t.Errorf("mode = %s, want predefined after accepting the fallback", m)
	}
	if players, _ := store.Players(); len(players) != 3 {
		t.Errorf("players lost after the quota error: %v", players)
	}
}

func TestApp_UnauthorizedGoesToSettings(t *testing.T) {
	lines := []string{"1", "Ann", "Bob", "Cid", ":go", "home", "q"}
	app, term, store := newTestApp(t, lines)
	_ = store.SetAPIKey("bad")
	calls := 0
	app.newGenerator = func(cfg llm_client.Config, creativity float64) (mission.Generator, error) {
		calls++
		if cfg.APIKey != "bad" || creativity != models.DefaultCreativity {
			t.Errorf("generator built with %+v, %v", cfg, creativity)
		}
		return stubGenerator{err: llm_client.ErrUnauthorized}, nil
	}

	runApp(t, app, term)

	if calls != 1 {
		t.Errorf("generator factory called %d times", calls)
	}
	out := term.output()
	if !strings.Contains(out, "API key was rejected") || !strings.Contains(out, "Settings:") {
		t.Errorf("unauthorized did not lead to the settings screen:\n%s", out)
	}
}

func TestApp_AIGame(t *testing.T) {
	lines := script(
		[]string{"1", "Ann", "Bob", "Cid", ":go ai"},
		revealAll(3),
		[]string{"q"},
	)
	app, term, store := newTestApp(t, lines)
	_ = store.SetAPIKey("key")
	app.newGenerator = func(llm_client.Config, float64) (mission.Generator, error) {
		return stubGenerator{}, nil
	}

	runApp(t, app, term)

	if n := strings.Count(term.output(), "say banana"); n != 3 {
		t.Errorf("generated missions shown %d times, want 3", n)
	}
}

func TestApp_ManualMissions(t *testing.T) {
	lines := script(
		[]string{"1", "Ann", "Bob", "Cid", ":go manual"},
		[]string{"", "Hop", ":prev", "", "Skip", "Jump"},
		revealAll(3),
		[]string{"q"},
	)
	app, term, store := newTestApp(t, lines)
	_ = store.SetMode(models.ModePredefined)

	runApp(t, app, term)

	out := term.output()
	if !strings.Contains(out, "The mission cannot be empty.") {
		t.Error("an empty manual mission was accepted")
	}
	for _, m := range []string{"Hop", "Skip", "Jump"} {
		if !strings.Contains(out, "  "+m+"\n") {
			t.Errorf("manual mission %q was never revealed", m)
		}
	}
	if strings.Contains(out, "  Crawl\n") {
		t.Error("a pool mission leaked into a manual game")
	}
}

func TestApp_SettingsScreen(t *testing.T) {
	lines := []string{
		"1",    // needs a key, lands on settings
		"done", // still refused
		"creativity 2",
		"creativity 0.3",
		"mode predefined",
		"done",
		":home", "q",
	}
	app, term, store := newTestApp(t, lines)

	runApp(t, app, term)

	out := term.output()
	if strings.Count(out, "needs an API key") != 2 {
		t.Errorf("missing API key not reported twice:\n%s", out)
	}
	if !strings.Contains(out, "between 0.0 and 1.0") {
		t.Error("out-of-range creativity accepted")
	}
	if c, _ := store.Creativity(); c != 0.3 {
		t.Errorf("creativity = %v, want 0.3", c)
	}
	if m, _ := store.Mode(); m != models.ModePredefined {
		t.Errorf("mode = %s, want predefined", m)
	}
}

func TestApp_RosterCommands(t *testing.T) {
	lines := []string{
		"2", "mode predefined", "done",
		"Ann", "Bob", "ann", ":rm 9", ":rm 1", ":go",
		":reset", "y", "n",
		":home", "q",
	}
	app, term, store := newTestApp(t, lines)

	runApp(t, app, term)

	out := term.output()
	if !strings.Contains(out, "already exists") {
		t.Error("duplicate name accepted")
	}
	if !strings.Contains(out, "Give the number") {
		t.Error("invalid removal not reported")
	}
	if !strings.Contains(out, "At least 3 players") {
		t.Error("generation started with too few players")
	}
	players, _ := store.Players()
	if len(players) != 1 || players[0].Name != "Bob" {
		t.Errorf("players = %v, want only Bob (second reset confirmation declined)", players)
	}
}

func TestApp_ResetEverything(t *testing.T) {
	lines := []string{"2", "reset", "y", "y", "q"}
	app, term, store := newTestApp(t, lines)
	_ = store.SetAPIKey("key")
	_ = store.SetPlayers([]models.Player{{ID: "1", Name: "Ann"}})
	app.roster.Add("Ann")

	runApp(t, app, term)

	if key, _ := store.APIKey(); key != "" {
		t.Error("API key survived the reset")
	}
	if players, _ := store.Players(); len(players) != 0 || app.roster.Len() != 0 {
		t.Error("players survived the reset")
	}
}

func TestApp_ClosedInputEndsCleanly(t *testing.T) {
	app, term, _ := newTestApp(t, nil)
	if err := app.Run(); err != nil {
		t.Errorf("Run returned %v on closed input", err)
	}
	if len(term.prompts) != 1 {
		t.Errorf("expected a single prompt, got %v", term.prompts)
	}
}

func TestSplitCommand(t *testing.T) {
	testCases := []struct {
		in, cmd, arg string
	}{
		{in: "mode  predefined ", cmd: "mode", arg: "predefined"},
		{in: "GO", cmd: "go"},
		{in: "", cmd: ""},
	}
	for _, tc := range testCases {
		cmd, arg := splitCommand(tc.in)
		if cmd != tc.cmd || arg != tc.arg {
			t.Errorf("splitCommand(%q) = %q, %q", tc.in, cmd, arg)
		}
	}
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DataDir: dir, DB: "killer.db"}

	store, pool, err := bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	store.Close()
	if len(pool) < 100 {
		t.Errorf("builtin pool has %d missions", len(pool))
	}

	cfg.MissionsFile = filepath.Join(dir, "missing.json")
	if _, _, err := bootstrap(context.Background(), cfg); err == nil {
		t.Error("expected an error for a missing missions file")
	}
}
