package driver

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AuthMode selects how the connection authenticates against SQL Server.
type AuthMode string

const (
	// AuthIntegrated defers identity to the operating system login.
	AuthIntegrated AuthMode = "integrated"
	// AuthSQLPassword uses an explicit username and password.
	AuthSQLPassword AuthMode = "sqlpassword"
	// AuthFederated defers identity to Azure Active Directory.
	AuthFederated AuthMode = "federated"
)

// ParseAuthMode converts user-facing spellings to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integrated", "windows", "trusted":
		return AuthIntegrated, nil
	case "sqlpassword", "sql", "password":
		return AuthSQLPassword, nil
	case "federated", "azuread", "aad":
		return AuthFederated, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q (valid: integrated, sqlpassword, federated)", s)
	}
}

// ConnSpec describes one connection attempt. It lives for a single run and
// is never persisted; credentials exist only in memory.
type ConnSpec struct {
	Server          string
	Port            int
	Database        string
	Mode            AuthMode
	User            string
	Password        string
	FedAuth         string // federated workflow, e.g. ActiveDirectoryInteractive
	Encrypt         string // "", "true", "false", "disable"
	TrustServerCert bool
	DialTimeout     time.Duration
}

// Validate checks that the required fields for the selected auth mode are
// present. It runs before any connection attempt.
func (c *ConnSpec) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("missing required field: server")
	}
	if c.Database == "" {
		return fmt.Errorf("missing required field: database")
	}
	switch c.Mode {
	case AuthIntegrated, AuthFederated:
		// No embedded credentials.
	case AuthSQLPassword:
		if c.User == "" {
			return fmt.Errorf("missing required field: user (sqlpassword mode)")
		}
		if c.Password == "" {
			return fmt.Errorf("missing required field: password (sqlpassword mode)")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Mode)
	}
	return nil
}

// ClearCredentials wipes the credential fields. Called whenever the auth
// mode changes so stale credentials cannot leak across mode switches.
func (c *ConnSpec) ClearCredentials() {
	c.User = ""
	c.Password = ""
}

// SetMode switches the auth mode, clearing credentials when it changes.
func (c *ConnSpec) SetMode(mode AuthMode) {
	if c.Mode != mode {
		c.ClearCredentials()
	}
	c.Mode = mode
}

// DSN builds the sqlserver:// connection string for the spec.
func (c *ConnSpec) DSN() string {
	host := c.Server
	port := c.Port
	if port == 0 {
		port = 1433
	}

	var dsn string
	switch c.Mode {
	case AuthSQLPassword:
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			url.QueryEscape(c.User), url.QueryEscape(c.Password),
			host, port, url.QueryEscape(c.Database))
	default:
		// Integrated and federated modes carry no credentials in the DSN.
		dsn = fmt.Sprintf("sqlserver://%s:%d?database=%s",
			host, port, url.QueryEscape(c.Database))
	}

	if c.Mode == AuthFederated {
		workflow := c.FedAuth
		if workflow == "" {
			workflow = "ActiveDirectoryInteractive"
		}
		dsn += "&fedauth=" + url.QueryEscape(workflow)
	}

	if c.Encrypt != "" {
		dsn += "&encrypt=" + c.Encrypt
	}
	if c.TrustServerCert {
		dsn += "&TrustServerCertificate=true"
	}
	if c.DialTimeout > 0 {
		// "dial timeout" is the go-mssqldb parameter name; + is URL encoding for space
		dsn += fmt.Sprintf("&dial%%20timeout=%d", int(c.DialTimeout.Seconds()))
	}

	return dsn
}

// Redacted returns the DSN with the password replaced, for logging.
func (c *ConnSpec) Redacted() string {
	if c.Mode != AuthSQLPassword {
		return c.DSN()
	}
	clone := *c
	clone.Password = "REDACTED"
	return clone.DSN()
}
