// Package settings persists the non-secret connection preferences between
// sessions. Credentials are never written to disk.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dbf2sql/internal/logging"
)

const fileName = "config.json"

// Settings holds last-used, non-secret preferences. Unknown keys in the
// file are ignored on load; absent keys take the documented defaults.
type Settings struct {
	Servers         []string `json:"servers,omitempty"`
	LastServer      string   `json:"last_server,omitempty"`
	LastDatabase    string   `json:"last_database,omitempty"`
	AuthMode        string   `json:"auth_mode,omitempty"`
	LastUser        string   `json:"last_user,omitempty"`
	SaveCredentials bool     `json:"save_credentials"`
	BatchSize       int      `json:"batch_size,omitempty"`
	Encoding        string   `json:"encoding,omitempty"`
	TablePrefix     string   `json:"table_prefix,omitempty"`
}

// Defaults returns the settings used when no file exists or the file is
// unreadable.
func Defaults() *Settings {
	return &Settings{
		AuthMode:        "integrated",
		SaveCredentials: false,
		BatchSize:       1000,
		Encoding:        "cp1252",
		TablePrefix:     "xxx_",
	}
}

// DefaultDataDir returns the per-user data directory, creating it if needed.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".dbf2sql")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads settings from dataDir. A missing or malformed file falls back
// to defaults without failing startup; the fallback is logged.
func Load(dataDir string) *Settings {
	s := Defaults()
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Could not read %s, using defaults: %v", path, err)
		}
		return s
	}

	if err := json.Unmarshal(data, s); err != nil {
		logging.Warn("Malformed settings file %s, using defaults: %v", path, err)
		return Defaults()
	}

	s.normalize()
	return s
}

// Save writes the settings back to dataDir. Only called after a successful
// run. save_credentials is forced off so a hand-edited file can never turn
// credential persistence on.
func (s *Settings) Save(dataDir string) error {
	s.SaveCredentials = false
	s.normalize()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	path := filepath.Join(dataDir, fileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// RememberServer records a server in the history list and as the last used.
func (s *Settings) RememberServer(server string) {
	if server == "" {
		return
	}
	s.LastServer = server
	for _, known := range s.Servers {
		if known == server {
			return
		}
	}
	s.Servers = append(s.Servers, server)
}

func (s *Settings) normalize() {
	if s.SaveCredentials {
		logging.Warn("save_credentials is not supported and has been turned off")
		s.SaveCredentials = false
	}
	if s.BatchSize <= 0 {
		s.BatchSize = Defaults().BatchSize
	}
	if s.AuthMode == "" {
		s.AuthMode = Defaults().AuthMode
	}
	if s.Encoding == "" {
		s.Encoding = Defaults().Encoding
	}
}
