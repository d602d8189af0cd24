package lending

import "time"

// Loan records one lending of a book to a user.
// A nil ReturnedAt marks the loan as open; for a given book at most one
// open loan may exist at any time.
type Loan struct {
	ID         int64
	UserID     int64
	BookID     int64
	BorrowedAt time.Time
	ReturnedAt *time.Time
}

// Open reports whether the book is still checked out.
func (l Loan) Open() bool {
	return l.ReturnedAt == nil
}

// LoanRecord is a loan enriched with the referenced book's current title
// and ISBN, resolved at query time rather than snapshotted at loan time.
type LoanRecord struct {
	Loan
	Title string
	ISBN  string
}
