// Package mssql extracts schema documents from SQL Server and Azure SQL
// databases. Every extraction opens its own connection and closes it
// before returning, so a target is only held for the duration of one
// call.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/schemadoc/schemadoc/internal/extract"
)

// Extractor resolves (database, connection) pairs against a configured
// target set and extracts their schema on demand. It satisfies the
// monitor's extractor contract.
type Extractor struct {
	mu      sync.RWMutex
	targets map[string]Config
}

func NewExtractor(targets []Config) *Extractor {
	e := &Extractor{targets: make(map[string]Config, len(targets))}
	for _, cfg := range targets {
		e.targets[targetKey(cfg.Database, cfg.ConnectionID)] = cfg
	}
	return e
}

func targetKey(database, connectionID string) string {
	return database + "\x00" + connectionID
}

// ExtractSchema looks up the target by its (database, connection) pair
// and extracts its current schema document.
func (e *Extractor) ExtractSchema(ctx context.Context, database, connectionID string) (*extract.Database, error) {
	e.mu.RLock()
	cfg, ok := e.targets[targetKey(database, connectionID)]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no extraction target configured for %s (%s)", database, connectionID)
	}
	return Extract(ctx, cfg)
}

// Extract connects to the target, reads its schema document and closes
// the connection.
func Extract(ctx context.Context, cfg Config) (*extract.Database, error) {
	driverName, dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection to %s: %w", cfg.Database, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Database, err)
	}

	doc := &extract.Database{
		Name:        cfg.Database,
		Server:      cfg.Server,
		ExtractedAt: time.Now().UTC(),
	}

	if doc.Tables, err = readTables(ctx, db); err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	if doc.Views, err = readViews(ctx, db); err != nil {
		return nil, fmt.Errorf("read views: %w", err)
	}
	if doc.Procedures, err = readProcedures(ctx, db); err != nil {
		return nil, fmt.Errorf("read procedures: %w", err)
	}
	if doc.Functions, err = readFunctions(ctx, db); err != nil {
		return nil, fmt.Errorf("read functions: %w", err)
	}

	return doc, nil
}

// readTables assembles the table list from the column catalog (every
// table has at least one column) and enriches it with primary keys,
// constraint counts and row counts from their own queries.
func readTables(ctx context.Context, db *sql.DB) ([]extract.Table, error) {
	rows, err := db.QueryContext(ctx, queryColumns)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*extract.Table)
	var order []string
	for rows.Next() {
		var (
			schemaName, tableName, columnName, dataType string
			maxLength, precision, scale                 int
			isNullable                                  bool
			defaultDefinition                           string
		)
		if err := rows.Scan(&schemaName, &tableName, &columnName, &dataType,
			&maxLength, &precision, &scale, &isNullable, &defaultDefinition); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		key := schemaName + "." + tableName
		tbl, ok := byName[key]
		if !ok {
			tbl = &extract.Table{Schema: schemaName, Name: tableName}
			byName[key] = tbl
			order = append(order, key)
		}
		tbl.Columns = append(tbl.Columns, extract.Column{
			Name:     columnName,
			DataType: formatDataType(dataType, maxLength, precision, scale),
			Nullable: isNullable,
			Default:  defaultDefinition,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	if err := applyPrimaryKeys(ctx, db, byName); err != nil {
		return nil, err
	}
	if err := applyConstraintCounts(ctx, db, byName); err != nil {
		return nil, err
	}
	if err := applyRowCounts(ctx, db, byName); err != nil {
		return nil, err
	}

	tables := make([]extract.Table, 0, len(order))
	for _, key := range order {
		tables = append(tables, *byName[key])
	}
	return tables, nil
}

func applyPrimaryKeys(ctx context.Context, db *sql.DB, byName map[string]*extract.Table) error {
	rows, err := db.QueryContext(ctx, queryPrimaryKeys)
	if err != nil {
		return fmt.Errorf("query primary keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName, tableName, columnName string
		if err := rows.Scan(&schemaName, &tableName, &columnName); err != nil {
			return fmt.Errorf("scan primary key row: %w", err)
		}
		if tbl, ok := byName[schemaName+"."+tableName]; ok {
			tbl.PrimaryKey = append(tbl.PrimaryKey, columnName)
		}
	}
	return rows.Err()
}

func applyConstraintCounts(ctx context.Context, db *sql.DB, byName map[string]*extract.Table) error {
	rows, err := db.QueryContext(ctx, queryConstraintCounts)
	if err != nil {
		return fmt.Errorf("query constraint counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName, tableName string
		var count int
		if err := rows.Scan(&schemaName, &tableName, &count); err != nil {
			return fmt.Errorf("scan constraint count row: %w", err)
		}
		if tbl, ok := byName[schemaName+"."+tableName]; ok {
			tbl.ConstraintCount = count
		}
	}
	return rows.Err()
}

func applyRowCounts(ctx context.Context, db *sql.DB, byName map[string]*extract.Table) error {
	rows, err := db.QueryContext(ctx, queryRowCounts)
	if err != nil {
		return fmt.Errorf("query row counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName, tableName string
		var count int64
		if err := rows.Scan(&schemaName, &tableName, &count); err != nil {
			return fmt.Errorf("scan row count row: %w", err)
		}
		if tbl, ok := byName[schemaName+"."+tableName]; ok {
			tbl.RowCount = count
		}
	}
	return rows.Err()
}

func readViews(ctx context.Context, db *sql.DB) ([]extract.View, error) {
	rows, err := db.QueryContext(ctx, queryViews)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	var views []extract.View
	for rows.Next() {
		var v extract.View
		if err := rows.Scan(&v.Schema, &v.Name); err != nil {
			return nil, fmt.Errorf("scan view row: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func readProcedures(ctx context.Context, db *sql.DB) ([]extract.Procedure, error) {
	rows, err := db.QueryContext(ctx, queryProcedures)
	if err != nil {
		return nil, fmt.Errorf("query procedures: %w", err)
	}
	defer rows.Close()

	var procs []extract.Procedure
	for rows.Next() {
		var p extract.Procedure
		if err := rows.Scan(&p.Schema, &p.Name, &p.Created, &p.Modified); err != nil {
			return nil, fmt.Errorf("scan procedure row: %w", err)
		}
		procs = append(procs, p)
	}
	return procs, rows.Err()
}

func readFunctions(ctx context.Context, db *sql.DB) ([]extract.Function, error) {
	rows, err := db.QueryContext(ctx, queryFunctions)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer rows.Close()

	var funcs []extract.Function
	for rows.Next() {
		var f extract.Function
		if err := rows.Scan(&f.Schema, &f.Name, &f.Created, &f.Modified); err != nil {
			return nil, fmt.Errorf("scan function row: %w", err)
		}
		funcs = append(funcs, f)
	}
	return funcs, rows.Err()
}
