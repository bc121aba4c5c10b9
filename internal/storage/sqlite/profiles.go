package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/evas-ssec/shis2mirto/pkg/logger"
	_ "modernc.org/sqlite"
)

// ProfileStore is a SQLite-backed cache of radiosonde profile payloads,
// keyed by the sample request (rounded time, position, pressure levels).
// Payloads are opaque bytes; the caller owns the encoding.
type ProfileStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewProfileStore opens (or creates) the cache database at dbPath.
func NewProfileStore(dbPath string, log *logger.Logger) (*ProfileStore, error) {
	storeLogger := log.Named("sqlite")

	storeLogger.Info("Opening profile cache",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initProfileSchema(db, storeLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &ProfileStore{db: db, logger: storeLogger}, nil
}

// Close closes the database connection.
func (s *ProfileStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func initProfileSchema(db *sql.DB, log *logger.Logger) error {
	log.Debug("Initializing profile cache schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			key        TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_profiles_fetched_at
		ON profiles(fetched_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fetched_at index: %w", err)
	}
	return nil
}

// Get returns the cached payload for key. The second result reports
// whether the key was present.
func (s *ProfileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM profiles WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query profile cache: %w", err)
	}
	return payload, true, nil
}

// Put stores or replaces the payload for key.
func (s *ProfileStore) Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload    = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, payload, fetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Purge removes entries fetched before the cutoff and reports how many
// rows were deleted.
func (s *ProfileStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM profiles WHERE fetched_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge profile cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}

	if n > 0 {
		s.logger.Info("Purged stale cached profiles",
			logger.Int64("removed", n),
			logger.Time("cutoff", cutoff))
	}
	return n, nil
}
