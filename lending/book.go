package lending

import "time"

const isbnLength = 10

// Book is a catalog record.
//
// Available is a denormalized cache of "no open loan references this book".
// It is maintained inside the same transaction that opens or closes a loan;
// the partial unique index on open loans is the authoritative invariant.
type Book struct {
	ID        int64
	Title     string
	ISBN      string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidISBN reports whether isbn is a 10-digit numeric string.
func ValidISBN(isbn string) bool {
	if len(isbn) != isbnLength {
		return false
	}

	for _, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
