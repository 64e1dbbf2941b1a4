package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	s := Load(dir)

	if s.BatchSize != 1000 {
		t.Errorf("BatchSize = %d, want 1000", s.BatchSize)
	}
	if s.AuthMode != "integrated" {
		t.Errorf("AuthMode = %q, want integrated", s.AuthMode)
	}
	if s.SaveCredentials {
		t.Error("SaveCredentials must default off")
	}
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := Load(dir)
	if s.BatchSize != 1000 || s.LastServer != "" {
		t.Errorf("malformed file should yield defaults, got %+v", s)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	payload := `{"last_server": "db01", "batch_size": 250, "color_scheme": "dark"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}

	s := Load(dir)
	if s.LastServer != "db01" {
		t.Errorf("LastServer = %q, want db01", s.LastServer)
	}
	if s.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", s.BatchSize)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := Defaults()
	s.RememberServer("db01.corp.local")
	s.LastDatabase = "Sales"
	s.AuthMode = "sqlpassword"
	s.LastUser = "loader"

	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded := Load(dir)
	if loaded.LastServer != "db01.corp.local" {
		t.Errorf("LastServer = %q", loaded.LastServer)
	}
	if len(loaded.Servers) != 1 || loaded.Servers[0] != "db01.corp.local" {
		t.Errorf("Servers = %v", loaded.Servers)
	}
	if loaded.LastDatabase != "Sales" || loaded.LastUser != "loader" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestSaveNeverPersistsCredentials(t *testing.T) {
	dir := t.TempDir()
	s := Defaults()
	s.SaveCredentials = true // hostile caller
	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if v, ok := raw["save_credentials"]; !ok || v != false {
		t.Errorf("save_credentials = %v, want false", v)
	}
	for key := range raw {
		if strings.Contains(key, "password") {
			t.Errorf("settings file contains credential key %q", key)
		}
	}
}

func TestLoadRefusesSaveCredentials(t *testing.T) {
	dir := t.TempDir()
	content := `{"last_server": "db01", "save_credentials": true}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s := Load(dir)
	if s.SaveCredentials {
		t.Error("a hand-edited save_credentials=true must be refused on load")
	}
	if s.LastServer != "db01" {
		t.Errorf("LastServer = %q; refusal must not discard the rest of the file", s.LastServer)
	}
}

func TestRememberServerDeduplicates(t *testing.T) {
	s := Defaults()
	s.RememberServer("a")
	s.RememberServer("b")
	s.RememberServer("a")

	if len(s.Servers) != 2 {
		t.Errorf("Servers = %v, want [a b]", s.Servers)
	}
	if s.LastServer != "a" {
		t.Errorf("LastServer = %q, want a", s.LastServer)
	}
}
