package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/lending/postgresengine/internal/adapters"
)

// OpenLoan inserts an open loan for the book unless the ledger already
// holds one. The uniqueness check and the insert are one guarded
// statement, so two concurrent borrows for the same book cannot both
// succeed regardless of what the availability flag claimed.
func (t *TxStore) OpenLoan(ctx context.Context, userID int64, bookID int64) (lending.Loan, error) {
	s := t.store
	builder := goqu.Dialect(dialectPostgres)

	openCheck := builder.
		From(s.loansTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{colBookID: bookID, colReturnedAt: nil})

	insertStmt := builder.
		Insert(s.loansTable).
		Cols(colUserID, colBookID, colBorrowedAt).
		FromQuery(
			builder.
				Select(goqu.V(userID), goqu.V(bookID), goqu.V(s.now())).
				Where(goqu.L("NOT EXISTS ?", openCheck)),
		).
		Returning(colID, colBorrowedAt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.Loan{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, t.tx, sqlQuery)
	if queryErr != nil {
		return lending.Loan{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		// The caller saw available == true, yet the ledger disagrees.
		if s.logger != nil {
			s.logger.Error(logMsgLedgerDiverged, logAttrBookID, bookID)
		}

		return lending.Loan{}, lending.ErrOpenLoanConflict
	}

	loan := lending.Loan{UserID: userID, BookID: bookID}

	scanErr := rows.Scan(&loan.ID, &loan.BorrowedAt)
	if scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr, "")
		return lending.Loan{}, errors.Join(lending.ErrScanningRowFailed, scanErr)
	}

	return loan, nil
}

// CloseLoan sets returned_at on the unique open loan matching both book
// and user. Returns lending.ErrLoanNotFound if no such loan exists, which
// covers "user never borrowed this book" and "book not currently out".
func (t *TxStore) CloseLoan(ctx context.Context, bookID int64, userID int64) (lending.Loan, error) {
	return t.closeLoan(ctx, goqu.Ex{colBookID: bookID, colUserID: userID, colReturnedAt: nil})
}

// CloseLoanForBook closes the open loan for a book regardless of the
// borrower. This is the admin override path; privilege is checked by the
// caller.
func (t *TxStore) CloseLoanForBook(ctx context.Context, bookID int64) (lending.Loan, error) {
	return t.closeLoan(ctx, goqu.Ex{colBookID: bookID, colReturnedAt: nil})
}

func (t *TxStore) closeLoan(ctx context.Context, where goqu.Ex) (lending.Loan, error) {
	s := t.store

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.loansTable).
		Set(goqu.Record{colReturnedAt: s.now()}).
		Where(where).
		Returning(colID, colUserID, colBookID, colBorrowedAt, colReturnedAt)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.Loan{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, t.tx, sqlQuery)
	if queryErr != nil {
		return lending.Loan{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.Loan{}, lending.ErrLoanNotFound
	}

	var loan lending.Loan
	var returnedAt sql.NullTime

	scanErr := rows.Scan(&loan.ID, &loan.UserID, &loan.BookID, &loan.BorrowedAt, &returnedAt)
	if scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr, "")
		return lending.Loan{}, errors.Join(lending.ErrScanningRowFailed, scanErr)
	}

	if returnedAt.Valid {
		loan.ReturnedAt = &returnedAt.Time
	}

	return loan, nil
}

// HasOpenLoan consults the ledger directly, bypassing the availability flag.
func (t *TxStore) HasOpenLoan(ctx context.Context, bookID int64) (bool, error) {
	s := t.store

	total, err := s.countRows(ctx, t.tx, s.loansTable, goqu.Ex{colBookID: bookID, colReturnedAt: nil})
	if err != nil {
		return false, err
	}

	return total > 0, nil
}

// ListOpenLoans returns one page of open loans ordered by loan id, plus
// the total count. A nil userID lists all open loans (the admin view);
// privilege is enforced by the caller.
func (s *Store) ListOpenLoans(ctx context.Context, userID *int64, page lending.PageRequest) ([]lending.LoanRecord, int64, error) {
	page = page.Normalized()

	where := []goqu.Expression{goqu.I("l." + colReturnedAt).IsNull()}
	countWhere := goqu.Ex{colReturnedAt: nil}

	if userID != nil {
		where = append(where, goqu.I("l."+colUserID).Eq(*userID))
		countWhere = goqu.Ex{colReturnedAt: nil, colUserID: *userID}
	}

	selectStmt := s.loanRecordQuery().
		Where(where...).
		Order(goqu.I("l." + colID).Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset()))

	records, listErr := s.queryLoanRecords(ctx, selectStmt)
	if listErr != nil {
		return nil, 0, listErr
	}

	total, countErr := s.countRows(ctx, s.db, s.loansTable, countWhere)
	if countErr != nil {
		return nil, 0, countErr
	}

	return records, total, nil
}

// ListClosedLoans returns all closed loans of a user, newest first, each
// enriched with the referenced book's current title and isbn.
func (s *Store) ListClosedLoans(ctx context.Context, userID int64) ([]lending.LoanRecord, error) {
	selectStmt := s.loanRecordQuery().
		Where(
			goqu.I("l."+colReturnedAt).IsNotNull(),
			goqu.I("l."+colUserID).Eq(userID),
		).
		Order(goqu.I("l." + colReturnedAt).Desc())

	return s.queryLoanRecords(ctx, selectStmt)
}

// loanRecordQuery is the shared loans-join-books projection.
func (s *Store) loanRecordQuery() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T(s.loansTable).As("l")).
		Join(
			goqu.T(s.booksTable).As("b"),
			goqu.On(goqu.I("b."+colID).Eq(goqu.I("l."+colBookID))),
		).
		Select(
			goqu.I("l."+colID),
			goqu.I("l."+colUserID),
			goqu.I("l."+colBookID),
			goqu.I("l."+colBorrowedAt),
			goqu.I("l."+colReturnedAt),
			goqu.I("b."+colTitle),
			goqu.I("b."+colISBN),
		)
}

func (s *Store) queryLoanRecords(ctx context.Context, selectStmt *goqu.SelectDataset) ([]lending.LoanRecord, error) {
	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return nil, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	records := make([]lending.LoanRecord, 0)

	for rows.Next() {
		record, scanErr := s.scanLoanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		records = append(records, record)
	}

	return records, nil
}

func (s *Store) scanLoanRecord(rows adapters.DBRows) (lending.LoanRecord, error) {
	var record lending.LoanRecord
	var returnedAt sql.NullTime

	scanErr := rows.Scan(
		&record.ID, &record.UserID, &record.BookID,
		&record.BorrowedAt, &returnedAt,
		&record.Title, &record.ISBN,
	)
	if scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr, "")
		return lending.LoanRecord{}, errors.Join(lending.ErrScanningRowFailed, scanErr)
	}

	if returnedAt.Valid {
		record.ReturnedAt = &returnedAt.Time
	}

	return record, nil
}
