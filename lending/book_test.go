package lending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hellobooks/lending-api/lending"
)

func Test_ValidISBN(t *testing.T) {
	testCases := []struct {
		name     string
		isbn     string
		expected bool
	}{
		{name: "ten digits", isbn: "0123456789", expected: true},
		{name: "too short", isbn: "123456789", expected: false},
		{name: "too long", isbn: "01234567890", expected: false},
		{name: "contains letter", isbn: "012345678X", expected: false},
		{name: "empty", isbn: "", expected: false},
		{name: "unicode digits rejected", isbn: "٠123456789", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, lending.ValidISBN(tc.isbn))
		})
	}
}

func Test_Loan_Open(t *testing.T) {
	// arrange
	returnedAt := time.Now()
	open := lending.Loan{ID: 1}
	closed := lending.Loan{ID: 2, ReturnedAt: &returnedAt}

	// assert
	assert.True(t, open.Open())
	assert.False(t, closed.Open())
}
