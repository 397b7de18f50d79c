package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"killer/internal/config"
	"killer/internal/display"
	"killer/internal/models"
	"killer/internal/roster"
	"killer/internal/settings"
)

func withStore(cfg *config.Config, fn func(*settings.Store) error) error {
	store, err := settings.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newSettingsCmd(cfg *config.Config) *cobra.Command {
	show := func(cmd *cobra.Command, _ []string) error {
		return withStore(cfg, func(s *settings.Store) error {
			mode, err := s.Mode()
			if err != nil {
				return err
			}
			key, err := s.APIKey()
			if err != nil {
				return err
			}
			creativity, err := s.Creativity()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.FormatSettings(display.SettingsView{
				Mode:       mode,
				APIKey:     key,
				Creativity: creativity,
				Backend:    cfg.Backend,
				Model:      cfg.Model,
			}))
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved settings",
		Args:  cobra.NoArgs,
		RunE:  show,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the saved settings",
			Args:  cobra.NoArgs,
			RunE:  show,
		},
		&cobra.Command{
			Use:   "set-key [key]",
			Short: "Save the API key (read from stdin when omitted, empty removes it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var key string
				if len(args) == 1 {
					key = args[0]
				} else {
					// a missing trailing newline still yields the key
					key, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				}
				return withStore(cfg, func(s *settings.Store) error {
					if err := s.SetAPIKey(key); err != nil {
						return err
					}
					if strings.TrimSpace(key) == "" {
						fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set-creativity <0.0-1.0>",
			Short: "Set how wild the generated missions are",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil || v < 0 || v > 1 {
					return fmt.Errorf("invalid creativity (must be between 0.0 and 1.0): %s", args[0])
				}
				return withStore(cfg, func(s *settings.Store) error {
					return s.SetCreativity(v)
				})
			},
		},
		&cobra.Command{
			Use:   "set-mode <ai|predefined|manual>",
			Short: "Choose where missions come from",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := models.ParseMode(args[0])
				if err != nil {
					return err
				}
				return withStore(cfg, func(s *settings.Store) error {
					return s.SetMode(m)
				})
			},
		},
	)
	return cmd
}

// withRoster loads the saved roster, runs fn and saves the result.
func withRoster(cfg *config.Config, fn func(*roster.Roster) error) error {
	return withStore(cfg, func(s *settings.Store) error {
		saved, err := s.Players()
		if err != nil {
			return err
		}
		r := roster.New(saved)
		if err := fn(r); err != nil {
			return err
		}
		return s.SetPlayers(r.Players())
	})
}

func newPlayersCmd(cfg *config.Config) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		return withRoster(cfg, func(r *roster.Roster) error {
			fmt.Fprintln(cmd.OutOrStdout(), display.FormatRoster(r.Players()))
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Manage the registered players",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the registered players",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Register players",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoster(cfg, func(r *roster.Roster) error {
					for _, name := range args {
						if _, err := r.Add(name); err != nil {
							return fmt.Errorf("%q: %w", name, err)
						}
					}
					fmt.Fprintln(cmd.OutOrStdout(), display.FormatRoster(r.Players()))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <name>...",
			Short: "Remove players by name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoster(cfg, func(r *roster.Roster) error {
					for _, name := range args {
						p, ok := r.Find(name)
						if !ok {
							return fmt.Errorf("no player named %q", name)
						}
						r.Remove(p.ID)
					}
					fmt.Fprintln(cmd.OutOrStdout(), display.FormatRoster(r.Players()))
					return nil
				})
			},
		},
	)
	return cmd
}

func newResetCmd(cfg *config.Config) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the players (--all also removes settings and the API key)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(s *settings.Store) error {
				if all {
					if err := s.ClearAllData(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "All data removed.")
					return nil
				}
				if err := s.ClearGameData(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Players removed.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also remove the settings and the API key")
	return cmd
}
