package lending

import "errors"

// User-facing failures of the borrowing state machine and the loan queries.
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookUnavailable   = errors.New("book is currently unavailable")
	ErrNotBorrowedByUser = errors.New("book was not borrowed by this user")
	ErrLoanNotFound      = errors.New("no matching open loan exists")
	ErrForbidden         = errors.New("admin privilege required")
	ErrNoContent         = errors.New("no loans match the given criteria")
	ErrDuplicateISBN     = errors.New("a book with this isbn already exists")
	ErrInvalidISBN       = errors.New("isbn must be a 10-digit numeric string")
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// ErrOpenLoanConflict signals that the availability flag and the loan ledger
// disagreed: the flag said available but an open loan already exists.
// This is a data-integrity bug, not an ordinary user error.
var ErrOpenLoanConflict = errors.New("open loan already exists for this book")

// Storage failures. These wrap the driver error via errors.Join.
var (
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrBuildingQueryFailed   = errors.New("building sql query failed")
	ErrQueryingStoreFailed   = errors.New("querying the store failed")
	ErrScanningRowFailed     = errors.New("scanning database row failed")
	ErrExecutingStoreFailed  = errors.New("executing statement failed")
	ErrBeginTxFailed         = errors.New("beginning transaction failed")
	ErrCommitTxFailed        = errors.New("committing transaction failed")
)
