package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/mattn/go-sqlite3"
	"github.com/pbaille/toolcat/internal/domain"
	"github.com/pressly/goose/v3"
)

// Supported database/sql drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals
var gooseMu sync.Mutex

// Store is a RecordStore backed by SQLite or Postgres
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// New opens the database and applies pending migrations
func New(driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)
	}

	if err := migrate(context.Background(), db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, driver: driver, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	dialect, dir := "sqlite3", "migrations/sqlite"
	if driver == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchAll returns every record of a collection in insertion order
func (s *Store) FetchAll(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT payload FROM records WHERE collection = ? ORDER BY seq"),
		string(c),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, err)
		}
		rec, err := decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}

	return recs, nil
}

// FetchOne returns the record with the given id
func (s *Store) FetchOne(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT payload FROM records WHERE collection = ? AND id = ?"),
		string(c), id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s %s: %w", c, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c, id, err)
	}

	rec, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c, id, err)
	}
	return rec, nil
}

// Insert stores rec and returns it as it will be read back
func (s *Store) Insert(ctx context.Context, c domain.Collection, rec domain.Record) (domain.Record, error) {
	now := s.now()
	stored := prepare(rec, now)

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c, err)
	}

	var key sql.NullString
	if k := uniqueKey(c, stored); k != "" {
		key = sql.NullString{String: k, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind("INSERT INTO records (collection, id, unique_key, payload, created_at) VALUES (?, ?, ?, ?, ?)"),
		string(c), stored["id"], key, string(payload), now.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert %s: %w", c, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, err)
	}

	return decode(payload)
}

// rebind turns "?" placeholders into "$n" for Postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func decode(payload []byte) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
