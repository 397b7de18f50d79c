package settings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"killer/internal/logger"
	"killer/internal/models"
)

const (
	keyAPIKey     = "api_key"
	keyCreativity = "creativity"
	keyPlayers    = "players"
	keyMode       = "mode"
)

// Store keeps the user's settings and current roster between runs.
// Generated missions are never written here.
type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM setting WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO setting (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM setting WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) APIKey() (string, error) {
	v, _, err := s.get(keyAPIKey)
	return v, err
}

// SetAPIKey stores the generator credential. A blank key removes it.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.remove(keyAPIKey)
	}
	return s.set(keyAPIKey, key)
}

// Creativity returns the saved generator temperature, or the default when
// nothing usable is stored.
func (s *Store) Creativity() (float64, error) {
	v, ok, err := s.get(keyCreativity)
	if err != nil || !ok {
		return models.DefaultCreativity, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Log.Warn("ignoring unreadable creativity setting", zap.String("value", v))
		return models.DefaultCreativity, nil
	}
	return models.ClampCreativity(f), nil
}

func (s *Store) SetCreativity(v float64) error {
	return s.set(keyCreativity, strconv.FormatFloat(models.ClampCreativity(v), 'f', -1, 64))
}

func (s *Store) Players() ([]models.Player, error) {
	v, ok, err := s.get(keyPlayers)
	if err != nil || !ok {
		return nil, err
	}
	var players []models.Player
	if err := json.Unmarshal([]byte(v), &players); err != nil {
		logger.Log.Warn("ignoring unreadable player list", zap.Error(err))
		return nil, nil
	}
	return players, nil
}

func (s *Store) SetPlayers(players []models.Player) error {
	if len(players) == 0 {
		return s.remove(keyPlayers)
	}
	b, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	return s.set(keyPlayers, string(b))
}

// Mode returns the saved mission mode, ModeAI when unset.
func (s *Store) Mode() (models.Mode, error) {
	v, ok, err := s.get(keyMode)
	if err != nil || !ok {
		return models.ModeAI, err
	}
	m, err := models.ParseMode(v)
	if err != nil {
		logger.Log.Warn("ignoring unknown mode setting", zap.String("value", v))
		return models.ModeAI, nil
	}
	return m, nil
}

func (s *Store) SetMode(m models.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q", m)
	}
	return s.set(keyMode, string(m))
}

// ClearGameData forgets the roster and keeps everything else.
func (s *Store) ClearGameData() error {
	return s.remove(keyPlayers)
}

// ClearAllData removes every setting, the API key included.
func (s *Store) ClearAllData() error {
	if _, err := s.db.Exec("DELETE FROM setting"); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}
