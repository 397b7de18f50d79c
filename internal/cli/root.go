package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"killer/internal/config"
	"killer/internal/listener"
	"killer/internal/logger"
	"killer/internal/mission"
	"killer/internal/settings"
)

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "killer",
		Short: "Pass-and-play Killer: a secret target and mission for every player",
		Long: `Killer runs a whole party game on one device. Register the players, let the
game draw a secret target and mission for each of them, then pass the device
around so everyone can read their own brief in private.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			return logger.Init(cfg.LogPath(), cfg.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cfg)
		},
	}

	config.Bind(cmd, cfg)
	cmd.AddCommand(newSettingsCmd(cfg), newPlayersCmd(cfg), newResetCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// bootstrap opens the settings store and loads the mission pool side by side.
func bootstrap(ctx context.Context, cfg *config.Config) (*settings.Store, []string, error) {
	var store *settings.Store
	var pool []string

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := settings.Open(cfg.DBPath())
		store = s
		return err
	})
	g.Go(func() error {
		p, err := loadPool(cfg.MissionsFile)
		pool = p
		return err
	})

	if err := g.Wait(); err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	return store, pool, nil
}

func loadPool(path string) ([]string, error) {
	if path == "" {
		return mission.BuiltinPool()
	}
	pool, err := mission.LoadPoolFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load missions from %s: %w", path, err)
	}
	return pool, nil
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	store, pool, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := listener.Init(); err != nil {
		return fmt.Errorf("init terminal input: %w", err)
	}
	defer listener.Close()

	app, err := newApp(cfg, store, pool, listener.Terminal{})
	if err != nil {
		return err
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM)
	go func() {
		<-c
		logger.Log.Info("terminated")
		logger.Sync()
		listener.Close()
		fmt.Println("\nGoodbye!")
		os.Exit(0)
	}()

	logger.Log.Info("interactive session started", zap.Int("pool", len(pool)))
	if err := app.Run(); err != nil {
		return err
	}
	fmt.Println("Goodbye!")
	return nil
}
