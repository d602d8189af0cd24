package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hellobooks/lending-api/lending"
)

type createBookRequest struct {
	Title string `json:"title" binding:"required"`
	ISBN  string `json:"isbn" binding:"required"`
}

type updateBookRequest struct {
	Title string `json:"title" binding:"required"`
}

// bookPageResponse mirrors the loan pagination envelope for the catalog.
type bookPageResponse struct {
	Status      string        `json:"status"`
	Books       []bookPayload `json:"books"`
	HasNext     bool          `json:"has_next"`
	HasPrev     bool          `json:"has_prev"`
	NextPageNum int           `json:"next_page_num"`
	PrevPageNum int           `json:"prev_page_num"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

func (s *server) listBooks(c *gin.Context) {
	page, paginated, ok := pageRequestFrom(c)
	if !ok {
		return
	}

	books, total, listErr := s.catalog.ListBooks(c.Request.Context(), page)
	if listErr != nil {
		respondError(c, listErr)
		return
	}

	if total == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	payload := make([]bookPayload, 0, len(books))
	for _, book := range books {
		payload = append(payload, bookToPayload(book))
	}

	if !paginated {
		writeJSON(c, http.StatusOK, bookListResponse{Status: statusSuccess, Books: payload})
		return
	}

	meta := lending.BuildLoanPage(nil, page, total)

	writeJSON(c, http.StatusOK, bookPageResponse{
		Status:      statusSuccess,
		Books:       payload,
		HasNext:     meta.HasNext,
		HasPrev:     meta.HasPrev,
		NextPageNum: meta.NextPage,
		PrevPageNum: meta.PrevPage,
		TotalPages:  meta.TotalPages,
		CurrentPage: meta.CurrentPage,
	})
}

func (s *server) getBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	book, getErr := s.catalog.GetBook(c.Request.Context(), bookID)
	if getErr != nil {
		respondError(c, getErr)
		return
	}

	writeJSON(c, http.StatusOK, singleBookResponse{Status: statusSuccess, Book: bookToPayload(book)})
}

func (s *server) createBook(c *gin.Context) {
	var req createBookRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, bindErr.Error())
		return
	}

	book, addErr := s.catalog.AddBook(c.Request.Context(), req.Title, req.ISBN)
	if addErr != nil {
		if errors.Is(addErr, lending.ErrDuplicateISBN) {
			respondMessage(c, http.StatusBadRequest, statusError, fmt.Sprintf("book with ISBN no.%s already exists", req.ISBN))
			return
		}

		respondError(c, addErr)

		return
	}

	writeJSON(c, http.StatusCreated, singleBookResponse{Status: statusSuccess, Book: bookToPayload(book)})
}

func (s *server) updateBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	var req updateBookRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, bindErr.Error())
		return
	}

	book, updateErr := s.catalog.UpdateBookTitle(c.Request.Context(), bookID, req.Title)
	if updateErr != nil {
		respondError(c, updateErr)
		return
	}

	writeJSON(c, http.StatusOK, singleBookResponse{Status: statusSuccess, Book: bookToPayload(book)})
}

func (s *server) deleteBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	if deleteErr := s.catalog.DeleteBook(c.Request.Context(), bookID); deleteErr != nil {
		if errors.Is(deleteErr, lending.ErrBookUnavailable) {
			respondMessage(c, http.StatusBadRequest, statusError,
				fmt.Sprintf("book with id %d is out on loan and cannot be deleted", bookID))
			return
		}

		respondError(c, deleteErr)

		return
	}

	respondMessage(c, http.StatusOK, statusSuccess, fmt.Sprintf("book with id %d has been deleted", bookID))
}

func parseBookID(c *gin.Context) (int64, bool) {
	bookID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, "please provide a book id. ID must be integer")
		return 0, false
	}

	return bookID, true
}

// pageRequestFrom reads the limit/page query args. The second return
// value reports whether pagination was requested at all.
func pageRequestFrom(c *gin.Context) (lending.PageRequest, bool, bool) {
	limitArg := c.Query("limit")
	pageArg := c.Query("page")

	if limitArg == "" && pageArg == "" {
		return lending.PageRequest{}.Normalized(), false, true
	}

	limit, limitErr := strconv.Atoi(limitArg)
	page, pageErr := strconv.Atoi(pageArg)

	if limitErr != nil || pageErr != nil {
		respondMessage(c, http.StatusBadRequest, statusError, "page and limit args must be integers")
		return lending.PageRequest{}, false, false
	}

	return lending.PageRequest{Page: page, Limit: limit}.Normalized(), true, true
}
