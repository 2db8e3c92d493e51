package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries provides access to named SQL queries loaded from embedded .sql files.
// Every method takes the executor explicitly so the same catalogue serves
// both *sqlx.DB and *sqlx.Tx. Queries are written with ? placeholders and
// rebound for the executor's driver.
type Queries struct {
	dot *dotsql.DotSql
}

// LoadQueries parses each embedded .sql file and merges them into one
// catalogue. Named queries are addressed by their "-- name:" tag, e.g.
// "get-form"; a parse error names the offending file.
func LoadQueries() (*Queries, error) {
	paths, err := fs.Glob(queriesFS, "queries/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list query files: %w", err)
	}

	parsed := make([]*dotsql.DotSql, 0, len(paths))
	for _, path := range paths {
		f, err := queriesFS.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		dot, err := dotsql.Load(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		parsed = append(parsed, dot)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no query files embedded")
	}
	return &Queries{dot: dotsql.Merge(parsed...)}, nil
}

func (q *Queries) raw(ext sqlx.ExtContext, name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return ext.Rebind(query), nil
}

// Exec executes a named statement.
func (q *Queries) Exec(ctx context.Context, ext sqlx.ExtContext, name string, args ...any) (sql.Result, error) {
	query, err := q.raw(ext, name)
	if err != nil {
		return nil, err
	}
	return ext.ExecContext(ctx, query, args...)
}

// Get retrieves a single row into dest.
func (q *Queries) Get(ctx context.Context, ext sqlx.ExtContext, name string, dest any, args ...any) error {
	query, err := q.raw(ext, name)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, ext, dest, query, args...)
}

// Select retrieves multiple rows into the dest slice.
func (q *Queries) Select(ctx context.Context, ext sqlx.ExtContext, name string, dest any, args ...any) error {
	query, err := q.raw(ext, name)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, ext, dest, query, args...)
}
