// Package dbf reads dBase/FoxPro table files through go-dbase, exposing
// them as a source.Table.
package dbf

import (
	"fmt"
	"io"

	"github.com/Valentin-Kaiser/go-dbase/dbase"

	"dbf2sql/internal/source"
)

// Table adapts an open DBF file to source.Table.
type Table struct {
	file    *dbase.File
	fields  []source.Field
	deleted int
}

// Open opens a DBF file. encoding names the code page used for text
// fields (see SupportedEncodings). Memo files are optional; values from a
// missing memo file surface as empty.
func Open(path, encoding string) (*Table, error) {
	if encoding == "" {
		encoding = "cp1252"
	}
	conv, err := converterFor(encoding)
	if err != nil {
		return nil, err
	}

	file, err := dbase.OpenTable(&dbase.Config{
		Filename:  path,
		Converter: conv,
		// Cleaning (trim, null normalization) is the loader's job.
		TrimSpaces: false,
	})
	if err != nil {
		return nil, fmt.Errorf("opening dbf file %s: %w", path, err)
	}

	cols := file.Columns()
	fields := make([]source.Field, 0, len(cols))
	for _, col := range cols {
		typeCode := byte('?')
		if t := col.Type(); len(t) > 0 {
			typeCode = t[0]
		}
		fields = append(fields, source.Field{
			Name:     col.Name(),
			Type:     typeCode,
			Length:   int(col.Length),
			Decimals: int(col.Decimals),
		})
	}

	return &Table{file: file, fields: fields}, nil
}

// Fields returns the ordered field descriptors from the file header.
func (t *Table) Fields() []source.Field {
	return t.fields
}

// RecordCount returns the header record count, deleted records included.
func (t *Table) RecordCount() int {
	return int(t.file.Header().RecordsCount())
}

// Next returns the raw values of the next live record in file order.
// Deleted records are skipped and counted.
func (t *Table) Next() ([]any, error) {
	for !t.file.EOF() {
		row, err := t.file.Next()
		if err != nil {
			return nil, fmt.Errorf("reading dbf record: %w", err)
		}
		if row.Deleted {
			t.deleted++
			continue
		}
		return row.Values(), nil
	}
	return nil, io.EOF
}

// Deleted returns the number of deleted records skipped so far.
func (t *Table) Deleted() int {
	return t.deleted
}

func (t *Table) Close() error {
	return t.file.Close()
}
