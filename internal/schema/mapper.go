// Package schema maps DBF field descriptors to SQL Server column
// definitions and renders the DDL for the target table.
package schema

import (
	"fmt"

	"dbf2sql/internal/source"
)

// Column is one target column definition. Columns correspond 1:1 and in
// order to the source fields they were derived from.
type Column struct {
	Name    string
	SQLType string
}

// MapField maps a single field descriptor to its target column type.
// The mapping is a fixed table over the DBF type codes; anything outside
// it fails the run, naming the offending field.
func MapField(f source.Field) (Column, error) {
	var sqlType string
	switch f.Type {
	case 'C':
		length := f.Length
		if length < 1 {
			length = 1
		}
		sqlType = fmt.Sprintf("NVARCHAR(%d)", length)
	case 'N':
		if f.Decimals > 0 {
			sqlType = fmt.Sprintf("NUMERIC(%d, %d)", f.Length, f.Decimals)
		} else {
			sqlType = "INT"
		}
	case 'D':
		sqlType = "DATE"
	case 'L':
		sqlType = "BIT"
	case 'M':
		sqlType = "NVARCHAR(MAX)"
	case 'F':
		sqlType = "FLOAT"
	default:
		return Column{}, fmt.Errorf("unsupported field type %q for field %s", string(f.Type), f.Name)
	}
	return Column{Name: f.Name, SQLType: sqlType}, nil
}

// MapFields maps every field in order. One bad field fails the whole set.
func MapFields(fields []source.Field) ([]Column, error) {
	cols := make([]Column, 0, len(fields))
	for _, f := range fields {
		col, err := MapField(f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
