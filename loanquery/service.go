package loanquery

import (
	"context"

	"github.com/hellobooks/lending-api/lending"
)

// Ledger is the read surface of the loan ledger the query service needs.
type Ledger interface {
	// ListOpenLoans lists open loans; a nil userID means all users.
	ListOpenLoans(ctx context.Context, userID *int64, page lending.PageRequest) ([]lending.LoanRecord, int64, error)
	// ListClosedLoans lists a user's closed loans, enriched with book data.
	ListClosedLoans(ctx context.Context, userID int64) ([]lending.LoanRecord, error)
}

// Filters narrows a loan query. A Returned filter of false selects the
// open loans; no Returned filter selects the closed-loan history.
type Filters struct {
	Returned *bool
	UserID   *int64
}

// Result is either one page of open loans or an unpaginated closed-loan
// history, depending on the filters.
type Result struct {
	Page    *lending.LoanPage
	History []lending.LoanRecord
}

// Service answers loan queries for a principal.
type Service struct {
	ledger Ledger
}

// NewService creates a loan query service on top of a ledger read surface.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// QueryLoans resolves a loan query for the given principal.
//
// Filtering for another user's loans requires admin privilege and fails
// with lending.ErrForbidden otherwise. An empty result after filtering is
// reported as lending.ErrNoContent, distinct from a failure; a page
// beyond the range of a non-empty result is a valid empty page.
func (s *Service) QueryLoans(ctx context.Context, principal lending.Principal, filters Filters, page lending.PageRequest) (Result, error) {
	if filters.Returned != nil && !*filters.Returned {
		return s.openLoans(ctx, principal, filters, page)
	}

	return s.history(ctx, principal, filters)
}

func (s *Service) openLoans(ctx context.Context, principal lending.Principal, filters Filters, page lending.PageRequest) (Result, error) {
	var scope *int64

	switch {
	case filters.UserID != nil:
		if *filters.UserID != principal.UserID && !principal.IsAdmin {
			return Result{}, lending.ErrForbidden
		}

		scope = filters.UserID

	case principal.IsAdmin:
		scope = nil // the global admin view

	default:
		userID := principal.UserID
		scope = &userID
	}

	records, total, listErr := s.ledger.ListOpenLoans(ctx, scope, page)
	if listErr != nil {
		return Result{}, listErr
	}

	if total == 0 {
		return Result{}, lending.ErrNoContent
	}

	loanPage := lending.BuildLoanPage(records, page, total)

	return Result{Page: &loanPage}, nil
}

func (s *Service) history(ctx context.Context, principal lending.Principal, filters Filters) (Result, error) {
	target := principal.UserID

	if filters.UserID != nil && *filters.UserID != principal.UserID {
		if !principal.IsAdmin {
			return Result{}, lending.ErrForbidden
		}

		target = *filters.UserID
	}

	records, listErr := s.ledger.ListClosedLoans(ctx, target)
	if listErr != nil {
		return Result{}, listErr
	}

	if len(records) == 0 {
		return Result{}, lending.ErrNoContent
	}

	return Result{History: records}, nil
}
