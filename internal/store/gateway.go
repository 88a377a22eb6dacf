// Package store is the only place SQL text is built. It owns the database
// handle and exposes idempotent table creation, batch insertion, and filtered
// reads over the postgres, mysql, and sqlite dialects.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/config"
	"github.com/couchcryptid/weather-station-etl/internal/observability"
)

const (
	kindCreate = "create"
	kindInsert = "insert"
	kindSelect = "select"
)

// Gateway executes statements against one long-lived database handle.
type Gateway struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open connects to the store described by creds and verifies the connection.
func Open(ctx context.Context, creds config.Credentials, logger *slog.Logger, metrics *observability.Metrics) (*Gateway, error) {
	d, err := DialectFor(creds.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.Driver, d.DSN(creds))
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}
	if d.Name == SQLite.Name {
		// sqlite allows one writer; a single connection also keeps
		// :memory: databases from splitting across the pool.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // the ping error is what matters
		return nil, &DatabaseError{Op: "connect", Err: err}
	}

	logger.Info("connected to database", "dialect", d.Name, "url", creds.Redacted())
	return New(db, d, logger, metrics), nil
}

// New wraps an existing handle.
func New(db *sql.DB, d Dialect, logger *slog.Logger, metrics *observability.Metrics) *Gateway {
	return &Gateway{db: db, dialect: d, logger: logger, metrics: metrics}
}

// Dialect returns the dialect statements are rendered for.
func (g *Gateway) Dialect() Dialect { return g.dialect }

// CheckReadiness pings the database.
func (g *Gateway) CheckReadiness(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return &DatabaseError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases the database handle.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// EnsureTable creates table with columns, in order, unless it already exists.
func (g *Gateway) EnsureTable(ctx context.Context, table string, columns []Column) error {
	stmt, err := BuildCreate(table, columns)
	if err != nil {
		return err
	}

	exists, err := g.tableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		g.logger.Debug("table already exists", "table", table)
		return nil
	}

	if _, err := g.db.ExecContext(ctx, stmt); err != nil {
		return g.fail(kindCreate, table, err)
	}
	g.metrics.Statements.WithLabelValues(kindCreate).Inc()
	g.logger.Info("table created", "table", table, "columns", len(columns))
	return nil
}

func (g *Gateway) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	if err := g.db.QueryRowContext(ctx, g.dialect.tableExists, g.dialect.tableName(table)).Scan(&n); err != nil {
		return false, g.fail(kindSelect, table, err)
	}
	g.metrics.Statements.WithLabelValues(kindSelect).Inc()
	return n > 0, nil
}

// InsertMany inserts records with one multi-row parameterized statement. All
// records must share the first record's keys. An empty slice is a no-op.
// Batches above the dialect's parameter limit are split across statements
// within a single transaction.
func (g *Gateway) InsertMany(ctx context.Context, table string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	columns, err := recordColumns(records)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: records have no columns", ErrNonUniformRecords)
	}

	rowsPerStmt := g.dialect.MaxParams / len(columns)
	if rowsPerStmt >= len(records) {
		stmt, args, err := insertChunk(g.dialect, table, columns, records)
		if err != nil {
			return err
		}
		if _, err := g.db.ExecContext(ctx, stmt, args...); err != nil {
			return g.fail(kindInsert, table, err)
		}
		g.metrics.Statements.WithLabelValues(kindInsert).Inc()
		return nil
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return g.fail(kindInsert, table, err)
	}
	for start := 0; start < len(records); start += rowsPerStmt {
		end := min(start+rowsPerStmt, len(records))
		stmt, args, err := insertChunk(g.dialect, table, columns, records[start:end])
		if err != nil {
			tx.Rollback() //nolint:errcheck // returning the build error
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			tx.Rollback() //nolint:errcheck // returning the exec error
			return g.fail(kindInsert, table, err)
		}
		g.metrics.Statements.WithLabelValues(kindInsert).Inc()
	}
	if err := tx.Commit(); err != nil {
		return g.fail(kindInsert, table, err)
	}
	return nil
}

func insertChunk(d Dialect, table string, columns []string, records []Record) (string, []any, error) {
	stmt, err := BuildInsert(d, table, columns, len(records))
	if err != nil {
		return "", nil, err
	}
	args := make([]any, 0, len(records)*len(columns))
	for _, r := range records {
		for _, c := range columns {
			args = append(args, bindValue(r[c]))
		}
	}
	return stmt, args, nil
}

// ReadFiltered returns every row of table matching all criteria. Nil or empty
// criteria scan the whole table.
func (g *Gateway) ReadFiltered(ctx context.Context, table string, criteria []FilterCriterion) ([]Row, error) {
	stmt, args, err := BuildSelect(g.dialect, table, criteria)
	if err != nil {
		return nil, err
	}

	for i := range args {
		args[i] = bindValue(args[i])
	}
	rows, err := g.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, g.fail(kindSelect, table, err)
	}
	defer rows.Close()
	g.metrics.Statements.WithLabelValues(kindSelect).Inc()

	columns, err := rows.Columns()
	if err != nil {
		return nil, g.fail(kindSelect, table, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, g.fail(kindSelect, table, err)
		}

		row := make(Row, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail(kindSelect, table, err)
	}
	return out, nil
}

// bindValue binds timestamps in UTC. sqlite compares them as text, so every
// stored and compared value must share one offset.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

// fail logs a driver error with context and converts it to a DatabaseError.
func (g *Gateway) fail(kind, table string, err error) error {
	g.metrics.StatementErrors.WithLabelValues(kind).Inc()
	g.logger.Error("database operation failed", "op", kind, "table", table, "dialect", g.dialect.Name, "error", err)
	return &DatabaseError{Op: kind, Table: table, Err: err}
}
