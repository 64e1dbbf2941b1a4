package driver

import (
	"strings"
	"testing"
	"time"
)

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{"integrated", AuthIntegrated, false},
		{"windows", AuthIntegrated, false},
		{"SQL", AuthSQLPassword, false},
		{"sqlpassword", AuthSQLPassword, false},
		{"azuread", AuthFederated, false},
		{"federated", AuthFederated, false},
		{"kerberos", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAuthMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ConnSpec
		wantErr string
	}{
		{
			name: "integrated ok",
			spec: ConnSpec{Server: "db01", Database: "Sales", Mode: AuthIntegrated},
		},
		{
			name:    "missing server",
			spec:    ConnSpec{Database: "Sales", Mode: AuthIntegrated},
			wantErr: "server",
		},
		{
			name:    "missing database",
			spec:    ConnSpec{Server: "db01", Mode: AuthIntegrated},
			wantErr: "database",
		},
		{
			name: "sql auth ok",
			spec: ConnSpec{Server: "db01", Database: "Sales", Mode: AuthSQLPassword, User: "sa", Password: "x"},
		},
		{
			name:    "sql auth missing password",
			spec:    ConnSpec{Server: "db01", Database: "Sales", Mode: AuthSQLPassword, User: "sa"},
			wantErr: "password",
		},
		{
			name:    "sql auth missing user",
			spec:    ConnSpec{Server: "db01", Database: "Sales", Mode: AuthSQLPassword, Password: "x"},
			wantErr: "user",
		},
		{
			name: "federated needs no credentials",
			spec: ConnSpec{Server: "db01", Database: "Sales", Mode: AuthFederated},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestDSNEncoding(t *testing.T) {
	spec := ConnSpec{
		Server:   "db01",
		Port:     1433,
		Database: "my database",
		Mode:     AuthSQLPassword,
		User:     "user@domain",
		Password: "P@ss:w/rd?123",
	}
	dsn := spec.DSN()

	if !strings.Contains(dsn, "user%40domain:") {
		t.Errorf("DSN missing encoded user: %q", dsn)
	}
	if !strings.Contains(dsn, ":P%40ss%3Aw%2Frd%3F123@") {
		t.Errorf("DSN missing encoded password: %q", dsn)
	}
	if !strings.Contains(dsn, "database=my+database") {
		t.Errorf("DSN missing encoded database: %q", dsn)
	}
}

func TestDSNIntegratedHasNoCredentials(t *testing.T) {
	spec := ConnSpec{Server: "db01", Database: "Sales", Mode: AuthIntegrated, DialTimeout: 5 * time.Second}
	dsn := spec.DSN()

	if strings.Contains(dsn, "@db01") {
		t.Errorf("integrated DSN must not embed credentials: %q", dsn)
	}
	if !strings.Contains(dsn, "dial%20timeout=5") {
		t.Errorf("DSN missing dial timeout: %q", dsn)
	}
}

func TestDSNFederatedWorkflow(t *testing.T) {
	spec := ConnSpec{Server: "db01", Database: "Sales", Mode: AuthFederated}
	dsn := spec.DSN()

	if !strings.Contains(dsn, "fedauth=ActiveDirectoryInteractive") {
		t.Errorf("federated DSN missing default fedauth workflow: %q", dsn)
	}
	if strings.Contains(dsn, "@db01") {
		t.Errorf("federated DSN must not embed credentials: %q", dsn)
	}
}

func TestSetModeClearsCredentials(t *testing.T) {
	spec := ConnSpec{
		Server:   "db01",
		Database: "Sales",
		Mode:     AuthSQLPassword,
		User:     "sa",
		Password: "secret",
	}

	spec.SetMode(AuthIntegrated)
	if spec.User != "" || spec.Password != "" {
		t.Errorf("credentials not cleared on mode switch: user=%q password=%q", spec.User, spec.Password)
	}

	// Same mode keeps fields.
	spec.User = "sa"
	spec.Password = "secret"
	spec.Mode = AuthSQLPassword
	spec.SetMode(AuthSQLPassword)
	if spec.User != "sa" || spec.Password != "secret" {
		t.Error("credentials cleared without a mode change")
	}
}

func TestRedacted(t *testing.T) {
	spec := ConnSpec{
		Server:   "db01",
		Database: "Sales",
		Mode:     AuthSQLPassword,
		User:     "sa",
		Password: "secret",
	}
	if strings.Contains(spec.Redacted(), "secret") {
		t.Errorf("Redacted() leaked password: %q", spec.Redacted())
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		mode       AuthMode
		registered []string
		want       string
		wantErr    bool
	}{
		{"sqlserver present", AuthIntegrated, []string{"sqlite", "sqlserver"}, "sqlserver", false},
		{"legacy name fallback", AuthSQLPassword, []string{"mssql"}, "mssql", false},
		{"federated wants azuread", AuthFederated, []string{"sqlserver", "azuresql"}, "azuresql", false},
		{"federated without azuread", AuthFederated, []string{"sqlserver"}, "", true},
		{"nothing installed", AuthIntegrated, []string{"sqlite"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.mode, tt.registered)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
			if tt.wantErr && !strings.Contains(err.Error(), "no compatible sql driver") {
				t.Errorf("error should name the condition: %v", err)
			}
		})
	}
}
