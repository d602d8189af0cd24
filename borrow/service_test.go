package borrow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellobooks/lending-api/borrow"
	"github.com/hellobooks/lending-api/lending"
)

// fakeStore is an in-memory catalog plus ledger with transactional
// semantics: WithinTx snapshots the state and restores it when the
// callback fails, so partial writes never leak out.
type fakeStore struct {
	books      map[int64]lending.Book
	loans      []lending.Loan
	nextLoanID int64
	now        time.Time
}

func newFakeStore(books ...lending.Book) *fakeStore {
	s := &fakeStore{
		books:      make(map[int64]lending.Book),
		nextLoanID: 1,
		now:        time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC),
	}

	for _, book := range books {
		s.books[book.ID] = book
	}

	return s
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(tx lending.TxOps) error) error {
	booksBackup := make(map[int64]lending.Book, len(s.books))
	for id, book := range s.books {
		booksBackup[id] = book
	}

	loansBackup := make([]lending.Loan, len(s.loans))
	copy(loansBackup, s.loans)

	if err := fn(s); err != nil {
		s.books = booksBackup
		s.loans = loansBackup

		return err
	}

	return nil
}

func (s *fakeStore) GetBookForUpdate(_ context.Context, bookID int64) (lending.Book, error) {
	book, ok := s.books[bookID]
	if !ok {
		return lending.Book{}, lending.ErrBookNotFound
	}

	return book, nil
}

func (s *fakeStore) SetAvailable(_ context.Context, bookID int64, available bool) error {
	book, ok := s.books[bookID]
	if !ok {
		return lending.ErrBookNotFound
	}

	book.Available = available
	s.books[bookID] = book

	return nil
}

func (s *fakeStore) OpenLoan(_ context.Context, userID int64, bookID int64) (lending.Loan, error) {
	for _, loan := range s.loans {
		if loan.BookID == bookID && loan.Open() {
			return lending.Loan{}, lending.ErrOpenLoanConflict
		}
	}

	loan := lending.Loan{
		ID:         s.nextLoanID,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: s.now,
	}

	s.nextLoanID++
	s.now = s.now.Add(time.Minute)
	s.loans = append(s.loans, loan)

	return loan, nil
}

func (s *fakeStore) CloseLoan(_ context.Context, bookID int64, userID int64) (lending.Loan, error) {
	return s.close(func(loan lending.Loan) bool {
		return loan.BookID == bookID && loan.UserID == userID
	})
}

func (s *fakeStore) CloseLoanForBook(_ context.Context, bookID int64) (lending.Loan, error) {
	return s.close(func(loan lending.Loan) bool {
		return loan.BookID == bookID
	})
}

func (s *fakeStore) close(matches func(lending.Loan) bool) (lending.Loan, error) {
	for i, loan := range s.loans {
		if loan.Open() && matches(loan) {
			returnedAt := s.now
			s.now = s.now.Add(time.Minute)
			s.loans[i].ReturnedAt = &returnedAt

			return s.loans[i], nil
		}
	}

	return lending.Loan{}, lending.ErrLoanNotFound
}

func (s *fakeStore) HasOpenLoan(_ context.Context, bookID int64) (bool, error) {
	for _, loan := range s.loans {
		if loan.BookID == bookID && loan.Open() {
			return true, nil
		}
	}

	return false, nil
}

/*** Tests ***/

func Test_Borrow_AvailableBook_OpensLoanAndFlipsFlag(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Title: "The Go Programming Language", Available: true})
	service := borrow.NewService(store)

	// act
	loan, err := service.Borrow(context.Background(), 42, 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), loan.UserID)
	assert.Equal(t, int64(1), loan.BookID)
	assert.True(t, loan.Open())
	assert.False(t, loan.BorrowedAt.IsZero())
	assert.False(t, store.books[1].Available)
}

func Test_Borrow_UnknownBook_FailsWithNotFound(t *testing.T) {
	// arrange
	store := newFakeStore()
	service := borrow.NewService(store)

	// act
	_, err := service.Borrow(context.Background(), 42, 999)

	// assert
	assert.ErrorIs(t, err, lending.ErrBookNotFound)
}

func Test_Borrow_BorrowedBook_FailsAndStaysFailing(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	_, err := service.Borrow(context.Background(), 42, 1)
	require.NoError(t, err)

	// act
	_, firstRetry := service.Borrow(context.Background(), 43, 1)
	_, secondRetry := service.Borrow(context.Background(), 43, 1)

	// assert
	assert.ErrorIs(t, firstRetry, lending.ErrBookUnavailable)
	assert.ErrorIs(t, secondRetry, lending.ErrBookUnavailable)
	assert.Len(t, store.loans, 1, "no second loan may be opened")
}

func Test_Borrow_StaleAvailabilityFlag_SurfacesLedgerConflict(t *testing.T) {
	// arrange: the flag claims available but the ledger holds an open loan
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	store.loans = append(store.loans, lending.Loan{ID: 7, UserID: 13, BookID: 1, BorrowedAt: store.now})
	service := borrow.NewService(store)

	// act
	_, err := service.Borrow(context.Background(), 42, 1)

	// assert: the ledger wins over the flag
	assert.ErrorIs(t, err, lending.ErrOpenLoanConflict)
	assert.Len(t, store.loans, 1)
	assert.True(t, store.books[1].Available, "the failed transaction must roll back the flag")
}

func Test_Return_ByBorrower_ClosesLoanAndRestoresFlag(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	borrowed, err := service.Borrow(context.Background(), 42, 1)
	require.NoError(t, err)

	// act
	returned, err := service.Return(context.Background(), lending.Principal{UserID: 42}, 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, borrowed.ID, returned.ID)
	require.NotNil(t, returned.ReturnedAt)
	assert.False(t, returned.BorrowedAt.After(*returned.ReturnedAt))
	assert.True(t, store.books[1].Available)
}

func Test_Return_ByOtherUser_IsRejected(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	_, err := service.Borrow(context.Background(), 42, 1)
	require.NoError(t, err)

	// act
	_, err = service.Return(context.Background(), lending.Principal{UserID: 43}, 1)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotBorrowedByUser)
	assert.False(t, store.books[1].Available, "the book stays checked out")
	assert.True(t, store.loans[0].Open())
}

func Test_Return_ByAdmin_ClosesAnyUsersLoan(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	_, err := service.Borrow(context.Background(), 42, 1)
	require.NoError(t, err)

	// act
	returned, err := service.Return(context.Background(), lending.Principal{UserID: 1, IsAdmin: true}, 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), returned.UserID)
	assert.False(t, returned.Open())
	assert.True(t, store.books[1].Available)
}

func Test_Return_AvailableBook_IsRejected(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	// act
	_, err := service.Return(context.Background(), lending.Principal{UserID: 42}, 1)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotBorrowedByUser)
}

func Test_BorrowReturnBorrow_RoundTrip(t *testing.T) {
	// arrange
	store := newFakeStore(lending.Book{ID: 1, Available: true})
	service := borrow.NewService(store)

	// act
	_, err := service.Borrow(context.Background(), 42, 1)
	require.NoError(t, err)

	_, err = service.Return(context.Background(), lending.Principal{UserID: 42}, 1)
	require.NoError(t, err)

	secondLoan, err := service.Borrow(context.Background(), 43, 1)

	// assert: a returned book can be borrowed again, by anyone
	require.NoError(t, err)
	assert.Equal(t, int64(43), secondLoan.UserID)
	assert.Len(t, store.loans, 2)
	assert.False(t, store.books[1].Available)
}
