// Package config loads the YAML job file used for scripted (headless)
// conversion runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dbf2sql/internal/driver"
	"dbf2sql/internal/loader"
	"dbf2sql/internal/schema"
)

// Job describes one scripted conversion run.
type Job struct {
	Source SourceConfig `yaml:"source"`
	Target TargetConfig `yaml:"target"`
	Load   LoadConfig   `yaml:"load"`
}

// SourceConfig points at the file to convert.
type SourceConfig struct {
	File     string `yaml:"file"`
	Encoding string `yaml:"encoding"` // character encoding of the file (default=cp1252)
}

// TargetConfig names the server and database to load into.
type TargetConfig struct {
	Server      string `yaml:"server"`
	Port        int    `yaml:"port"`     // default=1433
	Database    string `yaml:"database"`
	AuthMode    string `yaml:"auth_mode"` // integrated, sqlpassword, or federated (default=integrated)
	User        string `yaml:"user"`
	Password    string `yaml:"password"` // prefer ${ENV_VAR} over a literal
	Encrypt     string `yaml:"encrypt"`
	TrustCert   bool   `yaml:"trust_server_certificate"`
	DialTimeout int    `yaml:"dial_timeout_seconds"` // default=15
}

// LoadConfig tunes the load itself.
type LoadConfig struct {
	Table       string `yaml:"table"`        // override; derived from the file name when empty
	TablePrefix string `yaml:"table_prefix"` // default=xxx_
	Schema      string `yaml:"schema"`       // default=dbo
	BatchSize   int    `yaml:"batch_size"`   // default=1000
}

// Load reads a job file from path.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a job from YAML bytes. Environment variable references
// in the file are expanded before parsing.
func LoadBytes(data []byte) (*Job, error) {
	expanded := os.ExpandEnv(string(data))

	var job Job
	if err := yaml.Unmarshal([]byte(expanded), &job); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}

	job.applyDefaults()
	if err := job.validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &job, nil
}

func (j *Job) applyDefaults() {
	if j.Source.Encoding == "" {
		j.Source.Encoding = "cp1252"
	}
	if j.Target.Port == 0 {
		j.Target.Port = 1433
	}
	if j.Target.AuthMode == "" {
		j.Target.AuthMode = string(driver.AuthIntegrated)
	}
	if j.Target.DialTimeout == 0 {
		j.Target.DialTimeout = 15
	}
	if j.Load.Schema == "" {
		j.Load.Schema = schema.DefaultSchema
	}
	if j.Load.TablePrefix == "" {
		j.Load.TablePrefix = "xxx_"
	}
	if j.Load.BatchSize == 0 {
		j.Load.BatchSize = loader.DefaultBatchSize
	}
}

func (j *Job) validate() error {
	if j.Source.File == "" {
		return fmt.Errorf("source.file is required")
	}
	if j.Target.Server == "" {
		return fmt.Errorf("target.server is required")
	}
	if j.Target.Database == "" {
		return fmt.Errorf("target.database is required")
	}
	if _, err := driver.ParseAuthMode(j.Target.AuthMode); err != nil {
		return err
	}
	if j.Load.BatchSize < 1 {
		return fmt.Errorf("load.batch_size must be at least 1, got %d", j.Load.BatchSize)
	}
	return nil
}

// ConnSpec builds the connection spec for the job's target.
func (j *Job) ConnSpec() (driver.ConnSpec, error) {
	mode, err := driver.ParseAuthMode(j.Target.AuthMode)
	if err != nil {
		return driver.ConnSpec{}, err
	}
	spec := driver.ConnSpec{
		Server:          j.Target.Server,
		Port:            j.Target.Port,
		Database:        j.Target.Database,
		Mode:            mode,
		User:            j.Target.User,
		Password:        j.Target.Password,
		Encrypt:         j.Target.Encrypt,
		TrustServerCert: j.Target.TrustCert,
		DialTimeout:     time.Duration(j.Target.DialTimeout) * time.Second,
	}
	return spec, nil
}

// TableName returns the target table, deriving it from the source file
// name when not set explicitly.
func (j *Job) TableName() string {
	if j.Load.Table != "" {
		return j.Load.Table
	}
	base := strings.TrimSuffix(filepath.Base(j.Source.File), filepath.Ext(j.Source.File))
	return schema.TableNameFromFile(base, j.Load.TablePrefix)
}
