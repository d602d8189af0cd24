package lending

// DefaultPageLimit is used when a listing is requested without a limit.
const DefaultPageLimit = 10

// PageRequest is a 1-indexed page window.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalized clamps the request to sane values: page >= 1, limit >= 1
// with the default applied when unset.
func (p PageRequest) Normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}

	return p
}

// Offset returns the row offset for the window.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the number of pages needed for total rows at the
// given limit. Zero rows means zero pages.
func TotalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}

	return int((total + int64(limit) - 1) / int64(limit))
}

// LoanPage is one window of a loan listing together with its navigation
// facts. A page beyond the range is an empty page with HasNext false;
// HasPrev still reflects whether prior pages exist.
type LoanPage struct {
	Loans       []LoanRecord
	CurrentPage int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
	NextPage    int
	PrevPage    int
}

// BuildLoanPage assembles the navigation facts for one page window.
// NextPage and PrevPage are zero when there is no such page.
func BuildLoanPage(loans []LoanRecord, req PageRequest, total int64) LoanPage {
	req = req.Normalized()
	totalPages := TotalPages(total, req.Limit)

	page := LoanPage{
		Loans:       loans,
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		HasNext:     req.Page < totalPages,
		HasPrev:     totalPages > 0 && req.Page > 1,
	}

	if page.HasNext {
		page.NextPage = req.Page + 1
	}

	if page.HasPrev {
		page.PrevPage = req.Page - 1
		if page.PrevPage > totalPages {
			page.PrevPage = totalPages
		}
	}

	return page
}
