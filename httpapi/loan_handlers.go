package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/loanquery"
)

func (s *server) borrowBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	principal := principalFrom(c)

	loan, borrowErr := s.borrower.Borrow(c.Request.Context(), principal.UserID, bookID)
	if borrowErr != nil {
		if errors.Is(borrowErr, lending.ErrBookUnavailable) {
			respondMessage(c, http.StatusBadRequest, statusError,
				fmt.Sprintf("book with id %d is currently unavailable", bookID))
			return
		}

		respondError(c, borrowErr)

		return
	}

	writeJSON(c, http.StatusOK, borrowResponse{
		Status:  statusSuccess,
		Message: fmt.Sprintf("book with ID no.%d has been borrowed", bookID),
		LoanID:  loan.ID,
	})
}

func (s *server) returnBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	principal := principalFrom(c)

	if _, returnErr := s.borrower.Return(c.Request.Context(), principal, bookID); returnErr != nil {
		if errors.Is(returnErr, lending.ErrNotBorrowedByUser) {
			respondMessage(c, http.StatusForbidden, statusError,
				fmt.Sprintf("you did not borrow book with id %d", bookID))
			return
		}

		respondError(c, returnErr)

		return
	}

	respondMessage(c, http.StatusOK, statusSuccess, fmt.Sprintf("book with id %d has been returned", bookID))
}

func (s *server) listLoans(c *gin.Context) {
	filters, filtersOK := loanFiltersFrom(c)
	if !filtersOK {
		return
	}

	page, _, pageOK := pageRequestFrom(c)
	if !pageOK {
		return
	}

	result, queryErr := s.loans.QueryLoans(c.Request.Context(), principalFrom(c), filters, page)
	if queryErr != nil {
		if errors.Is(queryErr, lending.ErrNoContent) {
			c.Status(http.StatusNoContent)
			return
		}

		respondError(c, queryErr)

		return
	}

	if result.Page != nil {
		writeJSON(c, http.StatusOK, loanPageResponse{
			Status:      statusSuccess,
			Books:       loansToPayload(result.Page.Loans),
			HasNext:     result.Page.HasNext,
			HasPrev:     result.Page.HasPrev,
			NextPageNum: result.Page.NextPage,
			PrevPageNum: result.Page.PrevPage,
			TotalPages:  result.Page.TotalPages,
			CurrentPage: result.Page.CurrentPage,
		})

		return
	}

	writeJSON(c, http.StatusOK, loanHistoryResponse{
		Status: statusSuccess,
		Books:  loansToPayload(result.History),
	})
}

func loanFiltersFrom(c *gin.Context) (loanquery.Filters, bool) {
	var filters loanquery.Filters

	if arg := c.Query("returned"); arg != "" {
		returned, parseErr := strconv.ParseBool(arg)
		if parseErr != nil {
			respondMessage(c, http.StatusBadRequest, statusError, "returned arg must be a boolean")
			return loanquery.Filters{}, false
		}

		filters.Returned = &returned
	}

	if arg := c.Query("user_id"); arg != "" {
		userID, parseErr := strconv.ParseInt(arg, 10, 64)
		if parseErr != nil {
			respondMessage(c, http.StatusBadRequest, statusError, "user_id arg must be an integer")
			return loanquery.Filters{}, false
		}

		filters.UserID = &userID
	}

	return filters, true
}
