// Package driver resolves which registered database/sql driver serves a
// conversion run and builds the connection string for it.
package driver

import (
	"database/sql"
	"fmt"
	"strings"
)

// Driver names as registered with database/sql. The azuread driver wraps
// the TDS driver with federated token acquisition.
const (
	NameSQLServer = "sqlserver"
	NameAzure     = "azuresql"
)

// Preference returns the ordered driver preference list for an auth mode.
func Preference(mode AuthMode) []string {
	if mode == AuthFederated {
		return []string{NameAzure}
	}
	return []string{NameSQLServer, "mssql"}
}

// Resolve picks the first preferred driver present in registered. The list
// normally comes from sql.Drivers(). A miss is a reported environment
// error, never a silent default.
func Resolve(mode AuthMode, registered []string) (string, error) {
	have := make(map[string]bool, len(registered))
	for _, name := range registered {
		have[name] = true
	}

	prefs := Preference(mode)
	for _, name := range prefs {
		if have[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("no compatible sql driver registered for %s auth (wanted one of: %s)",
		mode, strings.Join(prefs, ", "))
}

// ResolveInstalled resolves against the drivers registered in this process.
func ResolveInstalled(mode AuthMode) (string, error) {
	return Resolve(mode, sql.Drivers())
}
