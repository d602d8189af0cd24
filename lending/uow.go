package lending

import "context"

// TxOps are the catalog and ledger operations available inside one
// transaction. Borrow and return run their read-modify-write cycle
// entirely through this interface so that both the loan row and the
// availability flag commit or roll back together.
type TxOps interface {
	// GetBookForUpdate loads a book and locks its row for the duration
	// of the transaction. Returns ErrBookNotFound if the id is unknown.
	GetBookForUpdate(ctx context.Context, bookID int64) (Book, error)

	// SetAvailable persists the availability flag.
	// Returns ErrBookNotFound if the id is unknown.
	SetAvailable(ctx context.Context, bookID int64, available bool) error

	// OpenLoan inserts an open loan unless one already exists for the
	// book. Returns ErrOpenLoanConflict if the ledger already holds an
	// open loan, independent of what the availability flag claims.
	OpenLoan(ctx context.Context, userID int64, bookID int64) (Loan, error)

	// CloseLoan sets returned_at on the unique open loan matching both
	// book and user. Returns ErrLoanNotFound if no such loan exists.
	CloseLoan(ctx context.Context, bookID int64, userID int64) (Loan, error)

	// CloseLoanForBook closes the open loan for a book regardless of the
	// borrower. Admin-only override path; callers gate on privilege.
	CloseLoanForBook(ctx context.Context, bookID int64) (Loan, error)

	// HasOpenLoan consults the ledger directly, bypassing the flag.
	HasOpenLoan(ctx context.Context, bookID int64) (bool, error)
}

// UnitOfWork scopes a function to one transaction with guaranteed
// commit-or-rollback on every exit path.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx TxOps) error) error
}
