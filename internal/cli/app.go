package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"killer/internal/config"
	"killer/internal/display"
	"killer/internal/listener"
	"killer/internal/llm_client"
	"killer/internal/logger"
	"killer/internal/mission"
	"killer/internal/models"
	"killer/internal/reveal"
	"killer/internal/roster"
	"killer/internal/session"
	"killer/internal/settings"
	"killer/internal/supervisor"
)

type terminal interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
	Println(s string)
	Clear()
}

type generatorFactory func(cfg llm_client.Config, creativity float64) (mission.Generator, error)

func newLLMGenerator(cfg llm_client.Config, creativity float64) (mission.Generator, error) {
	p, err := llm_client.New(cfg)
	if err != nil {
		return nil, err
	}
	return llm_client.NewMissionGenerator(p, cfg.Model, creativity), nil
}

type screen int

const (
	screenHome screen = iota
	screenSettings
	screenPlayers
	screenQuit
)

// App is the interactive game: home, settings, players, generation, reveal.
type App struct {
	cfg          *config.Config
	store        *settings.Store
	roster       *roster.Roster
	pool         []string
	sup          *supervisor.Supervisor
	term         terminal
	newGenerator generatorFactory
	rng          *rand.Rand
}

func newApp(cfg *config.Config, store *settings.Store, pool []string, term terminal) (*App, error) {
	saved, err := store.Players()
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:          cfg,
		store:        store,
		roster:       roster.New(saved),
		pool:         pool,
		sup:          supervisor.New(cfg.CallTimeout),
		term:         term,
		newGenerator: newLLMGenerator,
		rng:          mission.NewRand(),
	}, nil
}

// Run drives the screens until the user quits or closes the input.
func (a *App) Run() error {
	a.sup.Start()
	defer a.sup.Stop()

	next := screenHome
	for next != screenQuit {
		var err error
		switch next {
		case screenHome:
			next, err = a.home()
		case screenSettings:
			next, err = a.settings()
		case screenPlayers:
			next, err = a.players()
		}
		if errors.Is(err, listener.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) home() (screen, error) {
	a.term.Clear()
	a.term.Println(display.FormatHome())
	for {
		in, err := a.term.ReadLine("> ")
		if err != nil {
			return screenQuit, err
		}
		switch strings.ToLower(in) {
		case "1", "start":
			needs, err := a.needsKey()
			if err != nil {
				return screenQuit, err
			}
			if needs {
				a.term.Println("The AI mode needs an API key. Set one first, or pick another mode.")
				return screenSettings, nil
			}
			return screenPlayers, nil
		case "2", "settings":
			return screenSettings, nil
		case "q", "quit", "exit":
			return screenQuit, nil
		}
		a.term.Println("Choose 1, 2 or q.")
	}
}

// needsKey reports whether the saved mode cannot run for lack of a credential.
func (a *App) needsKey() (bool, error) {
	mode, err := a.store.Mode()
	if err != nil || mode != models.ModeAI {
		return false, err
	}
	if !strings.EqualFold(a.cfg.Backend, "gemini") {
		return false, nil
	}
	key, err := a.store.APIKey()
	if err != nil {
		return false, err
	}
	return key == "" && os.Getenv("GEMINI_API_KEY") == "", nil
}

func (a *App) settings() (screen, error) {
	for {
		if err := a.showSettings(); err != nil {
			return screenQuit, err
		}
		a.term.Println("Commands: mode <ai|predefined|manual>, key, creativity <0.0-1.0>, reset, done, home")
		in, err := a.term.ReadLine("settings> ")
		if err != nil {
			return screenQuit, err
		}

		cmd, arg := splitCommand(in)
		switch cmd {
		case "":
		case "mode":
			m, err := models.ParseMode(arg)
			if err != nil {
				a.term.Println(err.Error())
				continue
			}
			if err := a.store.SetMode(m); err != nil {
				return screenQuit, err
			}
		case "key":
			key, err := a.term.ReadSecret("API key (empty to remove): ")
			if err != nil {
				return screenQuit, err
			}
			if err := a.store.SetAPIKey(key); err != nil {
				return screenQuit, err
			}
		case "creativity":
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil || v < 0 || v > 1 {
				a.term.Println("Creativity must be a number between 0.0 and 1.0.")
				continue
			}
			if err := a.store.SetCreativity(v); err != nil {
				return screenQuit, err
			}
		case "reset":
			done, err := a.resetEverything()
			if err != nil || done {
				return screenHome, err
			}
		case "done":
			needs, err := a.needsKey()
			if err != nil {
				return screenQuit, err
			}
			if needs {
				a.term.Println("The AI mode needs an API key. Set one with 'key' or pick another mode.")
				continue
			}
			return screenPlayers, nil
		case "home":
			return screenHome, nil
		default:
			a.term.Println(fmt.Sprintf("Unknown command %q.", cmd))
		}
	}
}

func (a *App) showSettings() error {
	mode, err := a.store.Mode()
	if err != nil {
		return err
	}
	key, err := a.store.APIKey()
	if err != nil {
		return err
	}
	creativity, err := a.store.Creativity()
	if err != nil {
		return err
	}
	a.term.Println(display.FormatSettings(display.SettingsView{
		Mode:       mode,
		APIKey:     key,
		Creativity: creativity,
		Backend:    a.cfg.Backend,
		Model:      a.cfg.Model,
	}))
	return nil
}

func (a *App) players() (screen, error) {
	for {
		a.term.Println(display.FormatRoster(a.roster.Players()))
		a.term.Println("Type a name to add a player. Commands: :rm <number>, :go [mode], :settings, :reset, :home")
		in, err := a.term.ReadLine("players> ")
		if err != nil {
			return screenQuit, err
		}
		if in == "" {
			continue
		}

		if !strings.HasPrefix(in, ":") {
			if _, err := a.roster.Add(in); err != nil {
				a.term.Println(err.Error())
				continue
			}
			if err := a.saveRoster(); err != nil {
				return screenQuit, err
			}
			continue
		}

		cmd, arg := splitCommand(in[1:])
		switch cmd {
		case "rm":
			players := a.roster.Players()
			i, err := strconv.Atoi(arg)
			if err != nil || i < 1 || i > len(players) {
				a.term.Println("Give the number of the player to remove.")
				continue
			}
			a.roster.Remove(players[i-1].ID)
			if err := a.saveRoster(); err != nil {
				return screenQuit, err
			}
		case "go":
			if !a.roster.CanGenerate() {
				a.term.Println(fmt.Sprintf("At least %d players are needed.", models.MinPlayers))
				continue
			}
			mode, err := a.pickMode(arg)
			if err != nil {
				a.term.Println(err.Error())
				continue
			}
			next, err := a.play(mode)
			if err != nil || next != screenPlayers {
				return next, err
			}
		case "settings":
			return screenSettings, nil
		case "reset":
			done, err := a.resetEverything()
			if err != nil || done {
				return screenHome, err
			}
		case "home":
			return screenHome, nil
		default:
			a.term.Println(fmt.Sprintf("Unknown command %q.", cmd))
		}
	}
}

func (a *App) pickMode(arg string) (models.Mode, error) {
	if arg == "" {
		return a.store.Mode()
	}
	return models.ParseMode(arg)
}

func (a *App) saveRoster() error {
	return a.store.SetPlayers(a.roster.Players())
}

// play generates missions for the roster and runs the reveal round. Failures
// route the user to where they can be fixed.
func (a *App) play(mode models.Mode) (screen, error) {
	for {
		src, next, err := a.source(mode)
		if err != nil || src == nil {
			return next, err
		}

		res := a.generate(src)
		err = res.Err
		if err == nil {
			return a.reveal(res.Players, res.Assignments)
		}

		a.term.Println(display.FormatGenerationError(err))
		switch {
		case errors.Is(err, llm_client.ErrUnauthorized), errors.Is(err, llm_client.ErrMissingAPIKey):
			return screenSettings, nil
		case llm_client.IsQuota(err):
			ok, err := a.confirm("Use the predefined missions instead?")
			if err != nil || !ok {
				return screenPlayers, err
			}
			if err := a.store.SetMode(models.ModePredefined); err != nil {
				return screenQuit, err
			}
			mode = models.ModePredefined
		default:
			return screenPlayers, nil
		}
	}
}

// source builds the mission source for mode. A nil source with no error means
// the user backed out and should land on the returned screen.
func (a *App) source(mode models.Mode) (mission.Source, screen, error) {
	switch mode {
	case models.ModeAI:
		key, err := a.store.APIKey()
		if err != nil {
			return nil, screenQuit, err
		}
		creativity, err := a.store.Creativity()
		if err != nil {
			return nil, screenQuit, err
		}
		gen, err := a.newGenerator(a.cfg.LLM(key), creativity)
		if err != nil {
			logger.Log.Warn("mission generator unavailable", zap.Error(err))
			a.term.Println(display.FormatGenerationError(err))
			if errors.Is(err, llm_client.ErrMissingAPIKey) {
				return nil, screenSettings, nil
			}
			return nil, screenPlayers, nil
		}
		src, err := mission.NewGeneratorSource(gen)
		return src, screenPlayers, err
	case models.ModePredefined:
		src, err := mission.NewPoolSource(a.pool, a.cfg.PoolDelay, a.rng)
		return src, screenPlayers, err
	case models.ModeManual:
		texts, err := a.collectManual(a.roster.Len())
		if err != nil || texts == nil {
			return nil, screenPlayers, err
		}
		return mission.NewManualSource(texts, a.rng), screenPlayers, nil
	}
	return nil, screenPlayers, fmt.Errorf("unknown mode %q", mode)
}

// collectManual asks for one mission per player. It returns nil texts when
// the user cancels.
func (a *App) collectManual(n int) ([]string, error) {
	c := mission.NewManualCollector(n)
	a.term.Clear()
	a.term.Println("Write one mission per player. They are shuffled before being handed out.")

	for {
		slot, total := c.Slot()
		a.term.Println(display.FormatManualSlot(slot, total, c.Text()))
		in, err := a.term.ReadLine(fmt.Sprintf("mission %d> ", slot+1))
		if err != nil {
			return nil, err
		}

		switch in {
		case ":cancel":
			return nil, nil
		case ":prev":
			c.Previous()
			continue
		case ":next", "":
		default:
			c.SetText(in)
		}

		last := c.IsLast()
		if err := c.Next(); err != nil {
			a.term.Println("The mission cannot be empty.")
			continue
		}
		if last {
			texts, err := c.Finalize()
			if err != nil {
				a.term.Println(err.Error())
				continue
			}
			return texts, nil
		}
	}
}

func (a *App) generate(src mission.Source) supervisor.Result {
	a.term.Clear()
	a.term.Println(fmt.Sprintf("Generating missions (%s mode)...", src.Mode()))

	task := a.sup.Submit(a.roster.Players(), src)
	res := task.Wait(func(p models.GenerationProgress) {
		a.term.Println(display.FormatProgress(p))
	})
	if a.cfg.Verbose {
		a.term.Println(display.FormatGenerationMetrics(res.Metrics))
	}
	return res
}

// reveal runs the reveal round. players is the generation order, aligned
// with assignments.
func (a *App) reveal(players []models.Player, assignments []models.Assignment) (screen, error) {
	s, err := session.New(players, assignments)
	if err != nil {
		return screenPlayers, err
	}
	m := reveal.New()

	for {
		cur, _ := s.Current()
		a.term.Clear()
		a.term.Println(display.FormatTurn(cur.Killer))
		if _, err := a.term.ReadLine(fmt.Sprintf("Press Enter if you are %s > ", cur.Killer)); err != nil {
			return screenQuit, err
		}
		if err := m.ConfirmIdentity(); err != nil {
			return screenQuit, err
		}

		notice := ""
		for m.State() != reveal.StateMemorized {
			s = m.Sync(s)
			a.term.Clear()
			a.term.Println(display.FormatMission(cur, s.IsRevealed()))
			if notice != "" {
				a.term.Println(notice)
				notice = ""
			}

			in, err := a.term.ReadLine(revealHint(m) + " > ")
			if err != nil {
				return screenQuit, err
			}
			if strings.EqualFold(in, "m") {
				if err := m.Memorize(); errors.Is(err, reveal.ErrNotSeen) {
					notice = "Look at your mission before hiding it."
				}
				continue
			}
			if err := m.Click(); err != nil {
				return screenQuit, err
			}
		}

		s = m.Sync(s)
		a.term.Clear()
		a.term.Println(display.FormatMemorized(s.IsLast()))
		label := "Next player"
		if s.IsLast() {
			label = "Start the game"
		}
		if _, err := a.term.ReadLine("[Enter] " + label + " > "); err != nil {
			return screenQuit, err
		}

		var out reveal.Outcome
		s, out, err = m.Continue(s)
		if err != nil {
			return screenQuit, err
		}
		if out == reveal.OutcomeGameStarted {
			return a.gameStarted(s)
		}
	}
}

func revealHint(m *reveal.Machine) string {
	switch {
	case m.Visible():
		return "[Enter] hide  [m] memorized"
	case m.Seen():
		return "[Enter] show  [m] memorized"
	}
	return "[Enter] show mission"
}

func (a *App) gameStarted(s session.Session) (screen, error) {
	a.term.Clear()
	a.term.Println(display.FormatGameStarted(s.Len()))
	a.term.Println("  n) New game (clears the players)\n  q) Quit")
	for {
		in, err := a.term.ReadLine("> ")
		if err != nil {
			return screenQuit, err
		}
		switch strings.ToLower(in) {
		case "n":
			if err := a.store.ClearGameData(); err != nil {
				return screenQuit, err
			}
			a.roster.Clear()
			return screenHome, nil
		case "q":
			return screenQuit, nil
		}
	}
}

// resetEverything wipes all saved data after two confirmations.
func (a *App) resetEverything() (bool, error) {
	ok, err := a.confirm("Reset everything? Players, settings and the API key will be deleted.")
	if err != nil || !ok {
		return false, err
	}
	ok, err = a.confirm("Are you sure? This cannot be undone.")
	if err != nil || !ok {
		return false, err
	}
	if err := a.store.ClearAllData(); err != nil {
		return false, err
	}
	a.roster.Clear()
	logger.Log.Info("all data cleared")
	a.term.Println("Everything was reset.")
	return true, nil
}

func (a *App) confirm(question string) (bool, error) {
	a.term.Println(question + " [y/n]")
	for {
		ans, err := a.term.ReadLine("> ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		a.term.Println("Please answer y/n.")
	}
}

func splitCommand(in string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(in), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
