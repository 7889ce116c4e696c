// Package store implements the read-only user records collaborator exposed
// to formulas, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// DateLayout is the storage and display layout of birth dates.
const DateLayout = time.DateOnly

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// User is a person record.
type User struct {
	Name      string
	BirthDate time.Time
}

// Repository provides read access to user records.
type Repository interface {
	All(ctx context.Context) ([]User, error)
	BornBefore(ctx context.Context, date time.Time) ([]User, error)
}

var (
	ErrOpen   = lang.NewError(lang.KindServiceUnavailable, "open user store")
	ErrQuery  = lang.NewError(lang.KindServiceUnavailable, "query user store")
	ErrInsert = lang.NewError(lang.KindServiceUnavailable, "insert into user store")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	birth_date TEXT NOT NULL
)`

// SQLite is a [Repository] stored in a SQLite database.
type SQLite struct {
	db     *sql.DB
	logger log.Logger
}

var _ Repository = (*SQLite)(nil)

// Option configures a [SQLite] store.
type Option func(*SQLite)

// WithLogger sets the logger used to trace queries.
func WithLogger(logger log.Logger) Option {
	return func(s *SQLite) { s.logger = logger }
}

// Open opens (creating if needed) the database at dsn and ensures the users
// table exists.
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	s := &SQLite{}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("dsn", dsn))
	}

	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, ErrOpen.Wrap(err).With(slog.String("dsn", dsn))
	}

	s.db = db
	s.logger.TraceContext(ctx, "open user store", slog.String("dsn", dsn))

	return s, nil
}

// Close releases the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Insert adds users in a single transaction.
func (s *SQLite) Insert(ctx context.Context, users ...User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrInsert.Wrap(err)
	}

	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO users (name, birth_date) VALUES (?, ?)`)
	if err != nil {
		return ErrInsert.Wrap(err)
	}

	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.Name, u.BirthDate.Format(DateLayout)); err != nil {
			return ErrInsert.Wrap(err).With(slog.String("name", u.Name))
		}
	}

	if err := tx.Commit(); err != nil {
		return ErrInsert.Wrap(err)
	}

	s.logger.TraceContext(ctx, "insert users", slog.Int("count", len(users)))

	return nil
}

// All returns every user in insertion order.
func (s *SQLite) All(ctx context.Context) ([]User, error) {
	return s.query(ctx, `SELECT name, birth_date FROM users ORDER BY id`)
}

// BornBefore returns the users born strictly before date.
func (s *SQLite) BornBefore(ctx context.Context, date time.Time) ([]User, error) {
	return s.query(ctx,
		`SELECT name, birth_date FROM users WHERE birth_date < ? ORDER BY id`,
		date.Format(DateLayout))
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	defer rows.Close()

	var users []User

	for rows.Next() {
		var (
			u    User
			date string
		)

		if err := rows.Scan(&u.Name, &date); err != nil {
			return nil, ErrQuery.Wrap(err)
		}

		if u.BirthDate, err = time.Parse(DateLayout, date); err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.String("name", u.Name))
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	s.logger.TraceContext(ctx, "query users", slog.Int("count", len(users)))

	return users, nil
}

// Sample returns the demonstration users loaded by the CLI when no database
// is configured.
func Sample() []User {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []User{
		{Name: "Alice", BirthDate: date(1990, time.May, 15)},
		{Name: "Bob", BirthDate: date(1985, time.August, 22)},
		{Name: "Charlie", BirthDate: date(1995, time.March, 10)},
		{Name: "Diana", BirthDate: date(1982, time.December, 5)},
		{Name: "Eve", BirthDate: date(1988, time.July, 30)},
	}
}

// OpenSample opens an in-memory store loaded with [Sample].
func OpenSample(ctx context.Context, opts ...Option) (*SQLite, error) {
	s, err := Open(ctx, MemoryDSN, opts...)
	if err != nil {
		return nil, err
	}

	if err := s.Insert(ctx, Sample()...); err != nil {
		_ = s.Close()

		return nil, err
	}

	return s, nil
}
