package borrow

import "github.com/hellobooks/lending-api/lending"

// DecideBorrow checks whether the Available -> Borrowed transition is
// allowed. This is a pure function with no side effects; a rejected
// borrow leaves no state change behind, so repeating it fails the same
// way every time.
//
//	GIVEN: a book loaded under lock
//	WHEN: a user wants to borrow it
//	ERROR: lending.ErrBookUnavailable if the book is already out on loan
func DecideBorrow(book lending.Book) error {
	if !book.Available {
		return lending.ErrBookUnavailable
	}

	return nil
}

// DecideReturn checks whether the Borrowed -> Available transition is
// allowed.
//
//	GIVEN: a book loaded under lock
//	WHEN: a user wants to return it
//	ERROR: lending.ErrNotBorrowedByUser if the book is not out on loan
//
// Whether the caller actually holds the open loan is decided by the
// ledger inside the transaction, not by this check.
func DecideReturn(book lending.Book) error {
	if book.Available {
		return lending.ErrNotBorrowedByUser
	}

	return nil
}
