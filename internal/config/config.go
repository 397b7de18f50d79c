package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"killer/internal/llm_client"
)

const EnvPrefix = "KILLER"

type Config struct {
	DataDir      string
	DB           string
	LogFile      string
	Backend      string
	Model        string
	OllamaHost   string
	MissionsFile string
	CallTimeout  time.Duration
	PoolDelay    time.Duration
	Verbose      bool
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("--data-dir cannot be empty")
	}
	if !slices.Contains(llm_client.Backends, strings.ToLower(c.Backend)) {
		return fmt.Errorf("unsupported backend %q (want one of %s)", c.Backend, strings.Join(llm_client.Backends, ", "))
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("invalid call timeout (must be positive): %s", c.CallTimeout)
	}
	if c.PoolDelay < 0 {
		return fmt.Errorf("invalid pool delay (cannot be negative): %s", c.PoolDelay)
	}
	return nil
}

// DBPath is the settings database, relative paths resolved inside DataDir.
func (c *Config) DBPath() string {
	return c.resolve(c.DB)
}

func (c *Config) LogPath() string {
	return c.resolve(c.LogFile)
}

// LLM builds the provider configuration. apiKey comes from the settings store.
func (c *Config) LLM(apiKey string) llm_client.Config {
	return llm_client.Config{
		Backend:    strings.ToLower(c.Backend),
		Model:      c.Model,
		APIKey:     apiKey,
		OllamaHost: c.OllamaHost,
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Bind registers the global flags on cmd. Every flag can also be set from a
// KILLER_<NAME> environment variable; an explicit flag wins over the env.
func Bind(cmd *cobra.Command, cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs := cmd.PersistentFlags()

	fs.StringVar(&cfg.DataDir, "data-dir", defaultDataDir(), "directory for the settings database and log file (env: KILLER_DATA_DIR)")
	fs.StringVar(&cfg.DB, "db", "killer.db", "settings database file (env: KILLER_DB)")
	fs.StringVar(&cfg.LogFile, "log-file", "killer.log", "log file (env: KILLER_LOG_FILE)")
	fs.StringVar(&cfg.Backend, "backend", "gemini", "mission generator backend: gemini or ollama (env: KILLER_BACKEND)")
	fs.StringVar(&cfg.Model, "model", "", "model name, empty for the backend default (env: KILLER_MODEL)")
	fs.StringVar(&cfg.OllamaHost, "ollama-host", "", "ollama server URL (env: KILLER_OLLAMA_HOST)")
	fs.StringVar(&cfg.MissionsFile, "missions-file", "", "JSON file replacing the built-in mission pool (env: KILLER_MISSIONS_FILE)")
	fs.DurationVar(&cfg.CallTimeout, "call-timeout", 30*time.Second, "timeout for each mission generator call (env: KILLER_CALL_TIMEOUT)")
	fs.DurationVar(&cfg.PoolDelay, "pool-delay", 100*time.Millisecond, "pause between predefined missions (env: KILLER_POOL_DELAY)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug entries (env: KILLER_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "killer")
}
