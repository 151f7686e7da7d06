package answers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

// SQLOptions configures an SQLStore.
type SQLOptions struct {
	DSN     string
	Dialect Dialect
	Slot    string
	Logger  *zap.Logger
}

// SQLOption mutates SQLOptions.
type SQLOption func(*SQLOptions)

// WithDSN sets the connection string. For SQLite it is a file path.
func WithDSN(dsn string) SQLOption {
	return func(o *SQLOptions) { o.DSN = dsn }
}

// WithDialect forces a dialect instead of detecting it from the DSN.
func WithDialect(d Dialect) SQLOption {
	return func(o *SQLOptions) { o.Dialect = d }
}

// WithSlot overrides the storage key rows are keyed by.
func WithSlot(slot string) SQLOption {
	return func(o *SQLOptions) { o.Slot = slot }
}

// WithSQLLogger attaches a logger.
func WithSQLLogger(logger *zap.Logger) SQLOption {
	return func(o *SQLOptions) { o.Logger = logger }
}

// DetectDialect infers the dialect from a DSN: postgres URLs and key=value
// connection strings are Postgres, everything else is an SQLite path.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

// SQLStore persists snapshots as one row per slot. Each store instance stamps
// rows with its own session id.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	slot    string
	session string
	logger  *zap.Logger
	now     func() time.Time
}

// OpenSQLStore connects, applies migrations and returns a ready store.
func OpenSQLStore(ctx context.Context, opts ...SQLOption) (*SQLStore, error) {
	var cfg SQLOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	if cfg.Dialect == "" {
		cfg.Dialect = DetectDialect(cfg.DSN)
	}
	if cfg.Slot == "" {
		cfg.Slot = StorageKey
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var migrations string
	switch cfg.Dialect {
	case DialectSQLite:
		migrations = sqliteMigrations
		if cfg.DSN != ":memory:" && !strings.HasPrefix(cfg.DSN, "file:") {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("answers: create database directory: %w", err)
			}
		}
	case DialectPostgres:
		migrations = postgresMigrations
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, cfg.Dialect)
	}

	db, err := sql.Open(string(cfg.Dialect), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("answers: open %s: %w", cfg.Dialect, err)
	}
	if cfg.Dialect == DialectSQLite {
		// a single connection keeps :memory: databases alive across calls
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("answers: ping %s: %w", cfg.Dialect, err)
	}
	if _, err := db.ExecContext(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("answers: run migrations: %w", err)
	}

	session := uuid.NewString()
	cfg.Logger.Debug("answer store ready",
		zap.String("dialect", string(cfg.Dialect)),
		zap.String("slot", cfg.Slot),
		zap.String("session", session),
	)

	return &SQLStore{
		db:      db,
		dialect: cfg.Dialect,
		slot:    cfg.Slot,
		session: session,
		logger:  cfg.Logger,
		now:     time.Now,
	}, nil
}

// Session returns the id stamped on rows this store writes.
func (s *SQLStore) Session() string { return s.session }

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Load(ctx context.Context) (Answers, error) {
	var payload string
	query := s.rebind(`SELECT payload FROM intake_answers WHERE slot = ?`)
	err := s.db.QueryRowContext(ctx, query, s.slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Answers{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("answers: load slot %s: %w", s.slot, err)
	}
	return Decode([]byte(payload))
}

func (s *SQLStore) Save(ctx context.Context, a Answers) error {
	data, err := Encode(a, s.now())
	if err != nil {
		return err
	}
	query := s.rebind(`INSERT INTO intake_answers (slot, session_id, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (slot) DO UPDATE SET
    session_id = excluded.session_id,
    payload = excluded.payload,
    updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, s.slot, s.session, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("answers: save slot %s: %w", s.slot, err)
	}
	s.logger.Debug("answer snapshot saved", zap.String("slot", s.slot), zap.Int("answers", len(a)))
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	query := s.rebind(`DELETE FROM intake_answers WHERE slot = ?`)
	if _, err := s.db.ExecContext(ctx, query, s.slot); err != nil {
		return fmt.Errorf("answers: clear slot %s: %w", s.slot, err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
