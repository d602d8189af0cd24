package borrow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hellobooks/lending-api/borrow"
	"github.com/hellobooks/lending-api/lending"
)

func Test_DecideBorrow_AvailableBook_IsAllowed(t *testing.T) {
	// arrange
	book := lending.Book{ID: 1, Available: true}

	// act
	err := borrow.DecideBorrow(book)

	// assert
	assert.NoError(t, err)
}

func Test_DecideBorrow_BorrowedBook_IsRejected(t *testing.T) {
	// arrange
	book := lending.Book{ID: 1, Available: false}

	// act
	err := borrow.DecideBorrow(book)

	// assert
	assert.ErrorIs(t, err, lending.ErrBookUnavailable)
}

func Test_DecideBorrow_IsIdempotentOnFailure(t *testing.T) {
	// arrange
	book := lending.Book{ID: 1, Available: false}

	// act
	first := borrow.DecideBorrow(book)
	second := borrow.DecideBorrow(book)

	// assert
	assert.ErrorIs(t, first, lending.ErrBookUnavailable)
	assert.ErrorIs(t, second, lending.ErrBookUnavailable)
}

func Test_DecideReturn_BorrowedBook_IsAllowed(t *testing.T) {
	// arrange
	book := lending.Book{ID: 1, Available: false}

	// act
	err := borrow.DecideReturn(book)

	// assert
	assert.NoError(t, err)
}

func Test_DecideReturn_AvailableBook_IsRejected(t *testing.T) {
	// arrange
	book := lending.Book{ID: 1, Available: true}

	// act
	err := borrow.DecideReturn(book)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotBorrowedByUser)
}
