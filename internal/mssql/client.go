// Package mssql is the target side of the load pipeline: it connects with
// the resolved driver, prepares the target table, and streams batches in
// over TDS bulk copy.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	mssqldriver "github.com/microsoft/go-mssqldb"
	_ "github.com/microsoft/go-mssqldb/azuread"

	"dbf2sql/internal/driver"
	"dbf2sql/internal/logging"
	"dbf2sql/internal/schema"
)

// Client wraps a SQL Server connection pool for one load run.
type Client struct {
	db         *sql.DB
	driverName string
}

// Connect resolves a registered driver for spec's auth mode, opens the
// pool, and verifies the server is reachable before anything else runs.
func Connect(ctx context.Context, spec driver.ConnSpec) (*Client, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	name, err := driver.ResolveInstalled(spec.Mode)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, spec.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", spec.Redacted(), err)
	}

	logging.Info("Connected to %s via %s driver", spec.Redacted(), name)
	return &Client{db: db, driverName: name}, nil
}

// Close closes all connections.
func (c *Client) Close() {
	c.db.Close()
}

// Ping tests the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DriverName returns the resolved driver the pool was opened with.
func (c *Client) DriverName() string {
	return c.driverName
}

// ListDatabases returns the user databases on the server that are online,
// sorted case-insensitively.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name
		FROM sys.databases
		WHERE database_id > 4 AND state = 0
	`)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning database name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

// EnsureTable drops any previous load target of the same name and creates
// a fresh table matching cols.
func (c *Client) EnsureTable(ctx context.Context, schemaName, table string, cols []schema.Column) error {
	if _, err := c.db.ExecContext(ctx, schema.DropTableSQL(schemaName, table)); err != nil {
		return fmt.Errorf("dropping existing table %s: %w", table, err)
	}
	ddl := schema.CreateTableSQL(schemaName, table, cols)
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	logging.Info("Created table %s with %d columns", schema.QualifyTable(schemaName, table), len(cols))
	return nil
}

// BulkSink streams batches into one table using TDS bulk copy. It
// satisfies the loader's sink contract: each WriteBatch commits all of its
// rows or none.
type BulkSink struct {
	db           *sql.DB
	schemaName   string
	table        string
	columns      []string
	rowsPerBatch int
}

// NewBulkSink returns a sink targeting schemaName.table with the given
// column order. columns must match the order rows arrive in.
func (c *Client) NewBulkSink(schemaName, table string, columns []string, rowsPerBatch int) *BulkSink {
	return &BulkSink{
		db:           c.db,
		schemaName:   schemaName,
		table:        table,
		columns:      columns,
		rowsPerBatch: rowsPerBatch,
	}
}

// WriteBatch writes one batch of rows inside a transaction.
func (s *BulkSink) WriteBatch(ctx context.Context, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	fullTableName := schema.QualifyTable(s.schemaName, s.table)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = conn.Raw(func(driverConn any) error {
		mssqlConn, ok := driverConn.(*mssqldriver.Conn)
		if !ok {
			return fmt.Errorf("expected *mssql.Conn, got %T", driverConn)
		}

		rowsPerBatch := s.rowsPerBatch
		if rowsPerBatch <= 0 || rowsPerBatch > len(rows) {
			rowsPerBatch = len(rows)
		}

		bulk := mssqlConn.CreateBulkContext(ctx, fullTableName, s.columns)
		bulk.Options.Tablock = true
		bulk.Options.RowsPerBatch = rowsPerBatch

		for _, row := range rows {
			if err := bulk.AddRow(row); err != nil {
				return fmt.Errorf("adding row: %w", err)
			}
		}

		rowsAffected, err := bulk.Done()
		if err != nil {
			return fmt.Errorf("finalizing bulk insert: %w", err)
		}
		if rowsAffected != int64(len(rows)) {
			return fmt.Errorf("bulk insert: expected %d rows, got %d", len(rows), rowsAffected)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bulk copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bulk copy: %w", err)
	}
	return nil
}
