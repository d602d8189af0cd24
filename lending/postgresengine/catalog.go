package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/lending/postgresengine/internal/adapters"
)

var bookColumns = []any{colID, colTitle, colISBN, colAvailable, colCreatedAt, colUpdatedAt}

// GetBook loads a book by id. Returns lending.ErrBookNotFound if the id
// is unknown.
func (s *Store) GetBook(ctx context.Context, bookID int64) (lending.Book, error) {
	return s.getBook(ctx, s.db, bookID, false)
}

// GetBookForUpdate loads a book and locks its row until the transaction
// finishes.
func (t *TxStore) GetBookForUpdate(ctx context.Context, bookID int64) (lending.Book, error) {
	return t.store.getBook(ctx, t.tx, bookID, true)
}

func (s *Store) getBook(ctx context.Context, r runner, bookID int64, forUpdate bool) (lending.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.booksTable).
		Select(bookColumns...).
		Where(goqu.Ex{colID: bookID})

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.Book{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, r, sqlQuery)
	if queryErr != nil {
		return lending.Book{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.Book{}, lending.ErrBookNotFound
	}

	return s.scanBookRow(rows)
}

// AddBook inserts a new catalog entry. The guarded insert makes the ISBN
// uniqueness check and the insert one statement; zero affected rows means
// the ISBN is already taken.
func (s *Store) AddBook(ctx context.Context, title string, isbn string) (lending.Book, error) {
	if !lending.ValidISBN(isbn) {
		return lending.Book{}, lending.ErrInvalidISBN
	}

	builder := goqu.Dialect(dialectPostgres)

	duplicateCheck := builder.
		From(s.booksTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{colISBN: isbn})

	insertStmt := builder.
		Insert(s.booksTable).
		Cols(colTitle, colISBN).
		FromQuery(
			builder.
				Select(goqu.V(title), goqu.V(isbn)).
				Where(goqu.L("NOT EXISTS ?", duplicateCheck)),
		).
		Returning(bookColumns...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.Book{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return lending.Book{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.Book{}, lending.ErrDuplicateISBN
	}

	return s.scanBookRow(rows)
}

// UpdateBookTitle changes the title of an existing book.
func (s *Store) UpdateBookTitle(ctx context.Context, bookID int64, title string) (lending.Book, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.booksTable).
		Set(goqu.Record{colTitle: title, colUpdatedAt: s.now()}).
		Where(goqu.Ex{colID: bookID}).
		Returning(bookColumns...)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.Book{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return lending.Book{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.Book{}, lending.ErrBookNotFound
	}

	return s.scanBookRow(rows)
}

// DeleteBook removes a book from the catalog. It refuses while the ledger
// holds an open loan for the book, checked inside the same transaction.
func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	return s.withinTxStore(ctx, func(tx *TxStore) error {
		hasOpen, err := tx.HasOpenLoan(ctx, bookID)
		if err != nil {
			return err
		}

		if hasOpen {
			return lending.ErrBookUnavailable
		}

		deleteStmt := goqu.Dialect(dialectPostgres).
			Delete(s.booksTable).
			Where(goqu.Ex{colID: bookID})

		sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
		if toSQLErr != nil {
			s.logError(logMsgBuildQueryFailed, toSQLErr, "")
			return errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
		}

		rowsAffected, execErr := s.executeStatement(ctx, tx.tx, sqlQuery)
		if execErr != nil {
			return execErr
		}

		if rowsAffected == 0 {
			return lending.ErrBookNotFound
		}

		return nil
	})
}

// ListBooks returns one page of the catalog ordered by id, plus the total
// number of books.
func (s *Store) ListBooks(ctx context.Context, page lending.PageRequest) ([]lending.Book, int64, error) {
	page = page.Normalized()

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.booksTable).
		Select(bookColumns...).
		Order(goqu.I(colID).Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return nil, 0, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return nil, 0, queryErr
	}
	defer s.closeRows(rows)

	books := make([]lending.Book, 0)

	for rows.Next() {
		book, scanErr := s.scanBookRow(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}

		books = append(books, book)
	}

	total, countErr := s.countRows(ctx, s.db, s.booksTable, nil)
	if countErr != nil {
		return nil, 0, countErr
	}

	return books, total, nil
}

// SetAvailable persists the availability flag within the transaction.
func (t *TxStore) SetAvailable(ctx context.Context, bookID int64, available bool) error {
	s := t.store

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.booksTable).
		Set(goqu.Record{colAvailable: available, colUpdatedAt: s.now()}).
		Where(goqu.Ex{colID: bookID})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := s.executeStatement(ctx, t.tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return lending.ErrBookNotFound
	}

	return nil
}

func (s *Store) scanBookRow(rows adapters.DBRows) (lending.Book, error) {
	var book lending.Book

	scanErr := rows.Scan(&book.ID, &book.Title, &book.ISBN, &book.Available, &book.CreatedAt, &book.UpdatedAt)
	if scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr, "")
		return lending.Book{}, errors.Join(lending.ErrScanningRowFailed, scanErr)
	}

	return book, nil
}

// countRows runs a COUNT(*) over a table with an optional where expression.
func (s *Store) countRows(ctx context.Context, r runner, table string, where exp.Expression) (int64, error) {
	countStmt := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.COUNT(goqu.Star()))

	if where != nil {
		countStmt = countStmt.Where(where)
	}

	sqlQuery, _, toSQLErr := countStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return 0, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, r, sqlQuery)
	if queryErr != nil {
		return 0, queryErr
	}
	defer s.closeRows(rows)

	var total int64

	if rows.Next() {
		if scanErr := rows.Scan(&total); scanErr != nil {
			s.logError(logMsgScanRowFailed, scanErr, "")
			return 0, errors.Join(lending.ErrScanningRowFailed, scanErr)
		}
	}

	return total, nil
}
