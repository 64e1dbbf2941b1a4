// Package source defines the reader-side contract of the load pipeline.
package source

import "fmt"

// Field describes one column of the source file header: name, one-letter
// type code, and declared length/precision. Derived once at open.
type Field struct {
	Name     string
	Type     byte
	Length   int
	Decimals int
}

func (f Field) String() string {
	return fmt.Sprintf("%s(%c,%d,%d)", f.Name, f.Type, f.Length, f.Decimals)
}

// Table streams raw records from a source file in file order. Next returns
// io.EOF when the input is exhausted. Implementations are not safe for
// concurrent use; a table is owned by one worker for the run's duration.
type Table interface {
	// Fields returns the ordered field descriptors from the file header.
	Fields() []Field
	// RecordCount returns the record count declared in the header,
	// including deleted records.
	RecordCount() int
	// Next returns the raw values of the next live record.
	Next() ([]any, error)
	// Deleted returns the number of deleted records skipped so far.
	Deleted() int
	Close() error
}
