package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qnotes/pkg/api"
	"qnotes/pkg/gateway"
	"qnotes/pkg/utils"
	"qnotes/pkg/viewmodel"
)

const (
	keyToken       = "token"
	keyUsername    = "username"
	keyPreferences = "preferences"
)

// Store keeps the session token, the last username and list preferences
// between runs. The token is cached in memory so Token() never hits the database.
type Store struct {
	db     *sql.DB
	driver string
	tokens gateway.MemoryToken
}

// storedPreferences is the JSON shape of viewmodel.Preferences
type storedPreferences struct {
	Priority string `json:"priority,omitempty"`
	Sort     string `json:"sort"`
}

// Open connects to dsn, creates the schema and loads the saved token
func Open(dsn string) (*Store, error) {
	db, err := ConnectDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect session database: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	s := &Store{db: db, driver: DriverName(dsn)}

	token, err := s.get(keyToken)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.tokens.Set(token)
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Token implements gateway.TokenHolder
func (s *Store) Token() string {
	return s.tokens.Token()
}

// LoggedIn reports whether a token is stored
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) SaveToken(token string) error {
	if err := s.set(keyToken, token); err != nil {
		return err
	}
	s.tokens.Set(token)
	utils.Log("Saved session token")
	return nil
}

// ClearToken forgets the token; the username is kept for the next login prompt
func (s *Store) ClearToken() error {
	if err := s.del(keyToken); err != nil {
		return err
	}
	s.tokens.Clear()
	utils.Log("Cleared session token")
	return nil
}

func (s *Store) SaveUsername(username string) error {
	return s.set(keyUsername, username)
}

func (s *Store) Username() (string, error) {
	return s.get(keyUsername)
}

// SavePreferences persists the list filter and sort
func (s *Store) SavePreferences(prefs viewmodel.Preferences) error {
	stored := storedPreferences{Sort: string(prefs.Sort)}
	if prefs.Priority != nil {
		stored.Priority = string(*prefs.Priority)
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.set(keyPreferences, string(data))
}

// LoadPreferences returns the saved preferences, or fallback when none are
// saved. Unknown values in the stored record fall back field by field.
func (s *Store) LoadPreferences(fallback viewmodel.Preferences) (viewmodel.Preferences, error) {
	raw, err := s.get(keyPreferences)
	if err != nil || raw == "" {
		return fallback, err
	}

	var stored storedPreferences
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		utils.Log("Ignoring unreadable preferences: %v", err)
		return fallback, nil
	}

	prefs := fallback
	if sortOpt, err := viewmodel.ParseSortOption(stored.Sort); err == nil {
		prefs.Sort = sortOpt
	}
	prefs.Priority = nil
	if stored.Priority != "" {
		if p, err := api.ParsePriority(stored.Priority); err == nil {
			prefs.Priority = viewmodel.Filter(p)
		}
	}
	return prefs, nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(rebind(s.driver, "SELECT value FROM session WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(rebind(s.driver, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) del(key string) error {
	if _, err := s.db.Exec(rebind(s.driver, "DELETE FROM session WHERE key = ?"), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
