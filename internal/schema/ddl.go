package schema

import (
	"fmt"
	"strings"
)

// DefaultSchema is the schema target tables are created in.
const DefaultSchema = "dbo"

// QuoteIdentifier quotes a SQL Server identifier.
func QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// QualifyTable returns the bracket-quoted schema.table form.
func QualifyTable(schema, table string) string {
	if schema == "" {
		schema = DefaultSchema
	}
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
}

// CreateTableSQL renders the CREATE TABLE statement for cols.
func CreateTableSQL(schema, table string, cols []Column) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", QualifyTable(schema, table)))
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(fmt.Sprintf("    %s %s NULL", QuoteIdentifier(col.Name), col.SQLType))
	}
	sb.WriteString("\n)")
	return sb.String()
}

// DropTableSQL renders the statement that removes a previous load target.
func DropTableSQL(schema, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QualifyTable(schema, table))
}

// TableNameFromFile derives a target table name from a source file base
// name (extension already stripped), replacing anything outside
// [A-Za-z0-9_] with underscores and applying the configured prefix.
func TableNameFromFile(base, prefix string) string {
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	name := sb.String()
	if name == "" {
		name = "table"
	}
	return prefix + name
}
