package folio

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeFormat is the storage and display format for operation and price timestamps.
const timeFormat = "2006-01-02 15:04:05"

// defaultScale is the decimal scale used for floor rounding when none is configured.
const defaultScale = 3

// Options controls Core initialization.
type Options struct {
	DBPath string
	Logger *slog.Logger

	// DefaultPortfolioName resolves operation requests that omit a portfolio
	// name. Empty means requests must always name a portfolio.
	DefaultPortfolioName string

	// Scale is the number of decimal places kept when floor-rounding
	// accounting prices, rebalance targets and distribution percents.
	// Zero means the default of 3.
	Scale int32

	// Now supplies timestamps for operations that omit one. Nil means time.Now.
	Now func() time.Time
}

// Core provides access to portfolio ledger business logic and storage.
type Core struct {
	db               *sql.DB
	logger           *slog.Logger
	dbPath           string
	defaultPortfolio string
	scale            int32
	now              func() time.Time
}

// Open initializes a Core using the provided database path.
func Open(dbPath string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer, and the non-negativity
	// invariants rely on operations against one portfolio being serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.Warn("pragma foreign_keys failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Core{
		db:               db,
		logger:           logger,
		dbPath:           cleanPath,
		defaultPortfolio: opts.DefaultPortfolioName,
		scale:            scale,
		now:              now,
	}, nil
}

// Close releases the underlying database handle.
func (c *Core) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the resolved database file path.
func (c *Core) DBPath() string {
	return c.dbPath
}

// withTx executes fn inside a database transaction, rolling back on error
// and committing on success.
func (c *Core) withTx(fn func(*sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return WrapError(ErrCodeDatabase, "failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.logger.Error("transaction rollback failed on panic", "err", rbErr, "panic_value", p)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.logger.Error("transaction rollback failed", "err", rbErr, "original_error", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return WrapError(ErrCodeDatabase, "failed to commit transaction", err)
	}
	return nil
}

// whenAdd formats the request timestamp, defaulting to the clock when omitted.
func (c *Core) whenAdd(t *time.Time) string {
	if t != nil {
		return t.Format(timeFormat)
	}
	return c.now().Format(timeFormat)
}
