package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spachava753/toolbridge/internal/types"
)

// DB is the subset of *sql.DB used by Sqlite, so callers can hand in a
// wrapper that injects faults or records calls.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateID() string {
	return gonanoid.MustGenerate(idCharset, 8)
}

//go:embed schema.sql
var schemaSQL string

// Sqlite is a Journal backed by SQLite.
type Sqlite struct {
	db          DB
	idGenerator func() string
	now         func() time.Time
}

// NewSqlite runs the embedded schema against db and returns the journal. The
// caller owns the connection.
func NewSqlite(ctx context.Context, db DB) (*Sqlite, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Sqlite{db: db, idGenerator: generateID, now: time.Now}, nil
}

// Open opens (or creates) the SQLite database at path. ":memory:" is
// accepted. The returned close function releases the connection.
func Open(ctx context.Context, path string) (*Sqlite, func() error, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection opens its own empty :memory: database.
		db.SetMaxOpenConns(1)
	}
	j, err := NewSqlite(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return j, db.Close, nil
}

func (s *Sqlite) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = s.idGenerator()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, format, tool_name, tool_use_id, status, request, response, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Format), e.ToolName, e.ToolUseID, string(e.Status),
		e.Request, e.Response, e.Duration.Milliseconds(), e.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("recording journal entry: %w", err)
	}
	return e.ID, nil
}

const selectColumns = `SELECT id, format, tool_name, tool_use_id, status, request, response, duration_ms, created_at FROM entries`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e              Entry
		format, status string
		durationMs     int64
	)
	if err := row.Scan(&e.ID, &format, &e.ToolName, &e.ToolUseID, &status, &e.Request, &e.Response, &durationMs, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.Format = types.ToolUseFormat(format)
	e.Status = types.ToolStatus(status)
	e.Duration = time.Duration(durationMs) * time.Millisecond
	return e, nil
}

func (s *Sqlite) Get(ctx context.Context, id string) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading journal entry %s: %w", id, err)
	}
	return e, nil
}

func (s *Sqlite) List(ctx context.Context, opts ListOptions) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		var (
			query strings.Builder
			args  []any
		)
		query.WriteString(selectColumns)
		if opts.ToolName != "" {
			query.WriteString(` WHERE tool_name = ?`)
			args = append(args, opts.ToolName)
		}
		query.WriteString(` ORDER BY rowid DESC`)
		if opts.Limit > 0 {
			query.WriteString(` LIMIT ?`)
			args = append(args, opts.Limit)
		}

		rows, err := s.db.QueryContext(ctx, query.String(), args...)
		if err != nil {
			yield(Entry{}, fmt.Errorf("listing journal entries: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(Entry{}, fmt.Errorf("scanning journal entry: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("listing journal entries: %w", err))
		}
	}
}
