package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/lending/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName  = "books"
	defaultLoansTableName  = "loans"
	defaultUsersTableName  = "users"
	defaultTokensTableName = "revoked_tokens"

	dialectPostgres = "postgres"

	logMsgBuildQueryFailed  = "failed to build sql query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgTxCommitted       = "transaction committed"
	logMsgLedgerDiverged    = "availability flag and loan ledger diverged"
	logMsgSQLExecuted       = "executed sql for: "
	logMsgOperation         = "store operation: "
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrBookID           = "book_id"
	logAttrDurationMS       = "duration_ms"
	logActionQuery          = "query"
	logActionExec           = "exec"

	colID           = "id"
	colTitle        = "title"
	colISBN         = "isbn"
	colAvailable    = "available"
	colCreatedAt    = "created_at"
	colUpdatedAt    = "updated_at"
	colUserID       = "user_id"
	colBookID       = "book_id"
	colBorrowedAt   = "borrowed_at"
	colReturnedAt   = "returned_at"
	colUsername     = "username"
	colEmail        = "email"
	colPasswordHash = "password_hash"
	colIsAdmin      = "is_admin"
	colJTI          = "jti"
	colRevokedAt    = "revoked_at"
)

type sqlQueryString = string

// Logger interface for SQL query logging, operational messages, warnings,
// and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store provides catalog, ledger, user, and token persistence backed by
// a database adapter, with customizable logging and table naming.
type Store struct {
	db          adapters.DBAdapter
	booksTable  string
	loansTable  string
	usersTable  string
	tokensTable string
	logger      Logger
	now         func() time.Time
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTablePrefix prefixes all table names, e.g. "hellobooks_" turns the
// books table into "hellobooks_books".
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return lending.ErrEmptyTableName
		}

		s.booksTable = prefix + defaultBooksTableName
		s.loansTable = prefix + defaultLoansTableName
		s.usersTable = prefix + defaultUsersTableName
		s.tokensTable = prefix + defaultTokensTableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Warn level: non-critical issues like rollback failures
// Error level: failures that abort an operation, including ledger divergence.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for borrow/return timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		s.now = now
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		booksTable:  defaultBooksTableName,
		loansTable:  defaultLoansTableName,
		usersTable:  defaultUsersTableName,
		tokensTable: defaultTokensTableName,
		now:         time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// runner is satisfied by both the adapter and a running transaction, so
// the query helpers work inside and outside a unit of work.
type runner interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// executeQuery runs a select and logs it with timing at debug level.
func (s *Store) executeQuery(ctx context.Context, r runner, sqlQuery sqlQueryString) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := r.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionQuery, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBQueryFailed, queryErr, sqlQuery)
		return nil, errors.Join(lending.ErrQueryingStoreFailed, queryErr)
	}

	return rows, nil
}

// executeStatement runs a mutation and returns the number of affected rows.
func (s *Store) executeStatement(ctx context.Context, r runner, sqlQuery sqlQueryString) (int64, error) {
	start := time.Now()
	result, execErr := r.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionExec, time.Since(start))

	if execErr != nil {
		s.logError(logMsgDBExecFailed, execErr, sqlQuery)
		return 0, errors.Join(lending.ErrExecutingStoreFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(lending.ErrExecutingStoreFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// TxStore exposes the catalog and ledger operations bound to one
// transaction. It implements lending.TxOps.
type TxStore struct {
	store *Store
	tx    adapters.DBTx
}

// WithinTx runs fn inside a single transaction with guaranteed
// commit-or-rollback on every exit path, including panics.
func (s *Store) WithinTx(ctx context.Context, fn func(tx lending.TxOps) error) error {
	return s.withinTxStore(ctx, func(tx *TxStore) error {
		return fn(tx)
	})
}

func (s *Store) withinTxStore(ctx context.Context, fn func(tx *TxStore) error) error {
	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		return errors.Join(lending.ErrBeginTxFailed, beginErr)
	}

	start := time.Now()
	committed := false

	defer func() {
		if committed {
			return
		}

		if rbErr := tx.Rollback(ctx); rbErr != nil {
			if s.logger != nil {
				s.logger.Warn(logMsgRollbackFailed, logAttrError, rbErr.Error())
			}
		}
	}()

	if fnErr := fn(&TxStore{store: s, tx: tx}); fnErr != nil {
		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return errors.Join(lending.ErrCommitTxFailed, commitErr)
	}

	committed = true

	s.logOperation(logMsgTxCommitted, logAttrDurationMS, s.durationToMilliseconds(time.Since(start)))

	return nil
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s *Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (s *Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs failures at error level if the logger is configured.
func (s *Store) logError(msg string, err error, sqlQuery string) {
	if s.logger != nil {
		if sqlQuery != "" {
			s.logger.Error(msg, logAttrError, err.Error(), logAttrQuery, sqlQuery)
			return
		}

		s.logger.Error(msg, logAttrError, err.Error())
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// CreateSchema creates the tables and indexes if they do not exist yet.
// The partial unique index on open loans enforces the one-open-loan-per-book
// invariant at the storage level, independent of the availability flag.
func (s *Store) CreateSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.usersTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			title TEXT NOT NULL,
			isbn CHAR(10) NOT NULL UNIQUE,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.booksTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES %s (id),
			book_id BIGINT NOT NULL REFERENCES %s (id),
			borrowed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			returned_at TIMESTAMPTZ NULL
		)`, s.loansTable, s.usersTable, s.booksTable),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_book
			ON %s (book_id) WHERE returned_at IS NULL`, s.loansTable, s.loansTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			jti UUID PRIMARY KEY,
			revoked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.tokensTable),
	}

	for _, statement := range statements {
		if _, err := s.executeStatement(ctx, s.db, statement); err != nil {
			return err
		}
	}

	return nil
}
