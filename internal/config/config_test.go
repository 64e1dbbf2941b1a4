package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dbf2sql/internal/driver"
)

const validJob = `
source:
  file: /data/people.dbf
target:
  server: dbserver
  database: Sales
  auth_mode: sqlpassword
  user: loader
  password: secret
load:
  batch_size: 500
`

func TestLoadBytesDefaults(t *testing.T) {
	job, err := LoadBytes([]byte(validJob))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if job.Source.Encoding != "cp1252" {
		t.Errorf("Encoding = %q, want cp1252", job.Source.Encoding)
	}
	if job.Target.Port != 1433 {
		t.Errorf("Port = %d, want 1433", job.Target.Port)
	}
	if job.Target.DialTimeout != 15 {
		t.Errorf("DialTimeout = %d, want 15", job.Target.DialTimeout)
	}
	if job.Load.Schema != "dbo" {
		t.Errorf("Schema = %q, want dbo", job.Load.Schema)
	}
	if job.Load.TablePrefix != "xxx_" {
		t.Errorf("TablePrefix = %q, want xxx_", job.Load.TablePrefix)
	}
	if job.Load.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", job.Load.BatchSize)
	}
}

func TestLoadBytesValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing file",
			yaml:    "target:\n  server: s\n  database: d\n",
			wantErr: "source.file",
		},
		{
			name:    "missing server",
			yaml:    "source:\n  file: a.dbf\ntarget:\n  database: d\n",
			wantErr: "target.server",
		},
		{
			name:    "missing database",
			yaml:    "source:\n  file: a.dbf\ntarget:\n  server: s\n",
			wantErr: "target.database",
		},
		{
			name:    "bad auth mode",
			yaml:    "source:\n  file: a.dbf\ntarget:\n  server: s\n  database: d\n  auth_mode: kerberos\n",
			wantErr: "auth mode",
		},
		{
			name:    "negative batch size",
			yaml:    "source:\n  file: a.dbf\ntarget:\n  server: s\n  database: d\nload:\n  batch_size: -5\n",
			wantErr: "batch_size",
		},
		{
			name:    "not yaml",
			yaml:    "{{{",
			wantErr: "parsing job file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadBytesExpandsEnv(t *testing.T) {
	t.Setenv("DBF2SQL_TEST_PW", "from-env")
	job, err := LoadBytes([]byte(strings.Replace(validJob, "password: secret", "password: ${DBF2SQL_TEST_PW}", 1)))
	if err != nil {
		t.Fatal(err)
	}
	if job.Target.Password != "from-env" {
		t.Errorf("Password = %q, want expansion from environment", job.Target.Password)
	}
}

func TestConnSpec(t *testing.T) {
	job, err := LoadBytes([]byte(validJob))
	if err != nil {
		t.Fatal(err)
	}
	spec, err := job.ConnSpec()
	if err != nil {
		t.Fatal(err)
	}
	if spec.Mode != driver.AuthSQLPassword {
		t.Errorf("Mode = %q, want sqlpassword", spec.Mode)
	}
	if spec.User != "loader" || spec.Password != "secret" {
		t.Error("credentials not carried into spec")
	}
	if spec.DialTimeout != 15*time.Second {
		t.Errorf("DialTimeout = %v, want 15s", spec.DialTimeout)
	}
}

func TestTableName(t *testing.T) {
	job, err := LoadBytes([]byte(validJob))
	if err != nil {
		t.Fatal(err)
	}
	if got := job.TableName(); got != "xxx_people" {
		t.Errorf("TableName() = %q, want xxx_people", got)
	}

	job.Load.Table = "custom"
	if got := job.TableName(); got != "custom" {
		t.Errorf("TableName() = %q, want explicit override", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(validJob), 0600); err != nil {
		t.Fatal(err)
	}
	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.Source.File != "/data/people.dbf" {
		t.Errorf("File = %q", job.Source.File)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
