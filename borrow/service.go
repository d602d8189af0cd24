package borrow

import (
	"context"
	"errors"

	"github.com/hellobooks/lending-api/lending"
)

// Service orchestrates borrow and return transitions against the catalog
// and the loan ledger. Every transition runs inside one transaction: the
// loan row and the availability flag commit or roll back together.
type Service struct {
	uow lending.UnitOfWork
}

// NewService creates a borrowing service on top of a unit of work.
func NewService(uow lending.UnitOfWork) *Service {
	return &Service{uow: uow}
}

// Borrow checks the book out to the user and returns the new loan.
//
// The availability flag is only the fast path: the ledger's guarded
// insert inside the same transaction is authoritative, so a stale flag
// surfaces lending.ErrOpenLoanConflict instead of a double borrow.
func (s *Service) Borrow(ctx context.Context, userID int64, bookID int64) (lending.Loan, error) {
	var loan lending.Loan

	txErr := s.uow.WithinTx(ctx, func(tx lending.TxOps) error {
		book, getErr := tx.GetBookForUpdate(ctx, bookID)
		if getErr != nil {
			return getErr
		}

		if decideErr := DecideBorrow(book); decideErr != nil {
			return decideErr
		}

		opened, openErr := tx.OpenLoan(ctx, userID, bookID)
		if openErr != nil {
			return openErr
		}

		if setErr := tx.SetAvailable(ctx, bookID, false); setErr != nil {
			return setErr
		}

		loan = opened

		return nil
	})
	if txErr != nil {
		return lending.Loan{}, txErr
	}

	return loan, nil
}

// Return checks the book back in and returns the closed loan.
//
// A non-admin principal can only close their own loan; an admin may close
// the open loan of any user. A return attempt on a book the caller never
// borrowed fails with lending.ErrNotBorrowedByUser.
func (s *Service) Return(ctx context.Context, principal lending.Principal, bookID int64) (lending.Loan, error) {
	var loan lending.Loan

	txErr := s.uow.WithinTx(ctx, func(tx lending.TxOps) error {
		book, getErr := tx.GetBookForUpdate(ctx, bookID)
		if getErr != nil {
			return getErr
		}

		if decideErr := DecideReturn(book); decideErr != nil {
			return decideErr
		}

		var closed lending.Loan
		var closeErr error

		if principal.IsAdmin {
			closed, closeErr = tx.CloseLoanForBook(ctx, bookID)
		} else {
			closed, closeErr = tx.CloseLoan(ctx, bookID, principal.UserID)
		}

		if closeErr != nil {
			// The book is out on loan, just not to this caller.
			if errors.Is(closeErr, lending.ErrLoanNotFound) {
				return lending.ErrNotBorrowedByUser
			}

			return closeErr
		}

		if setErr := tx.SetAvailable(ctx, bookID, true); setErr != nil {
			return setErr
		}

		loan = closed

		return nil
	})
	if txErr != nil {
		return lending.Loan{}, txErr
	}

	return loan, nil
}
