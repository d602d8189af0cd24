package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/hellobooks/lending-api/identity"
	"github.com/hellobooks/lending-api/lending"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusSuccess = "success"
	statusError   = "error"

	contentTypeJSON = "application/json; charset=utf-8"
)

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type authResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	AuthToken string `json:"auth_token"`
}

type borrowResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	LoanID  int64  `json:"loan_id"`
}

type bookPayload struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ISBN      string    `json:"isbn"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"date_created"`
	UpdatedAt time.Time `json:"date_modified"`
}

type bookListResponse struct {
	Status string        `json:"status"`
	Books  []bookPayload `json:"books"`
}

type singleBookResponse struct {
	Status string      `json:"status"`
	Book   bookPayload `json:"book"`
}

type loanPayload struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	ISBN       string     `json:"isbn"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// loanPageResponse is the canonical pagination envelope for open loans.
type loanPageResponse struct {
	Status      string        `json:"status"`
	Books       []loanPayload `json:"books"`
	HasNext     bool          `json:"has_next"`
	HasPrev     bool          `json:"has_prev"`
	NextPageNum int           `json:"next_page_num"`
	PrevPageNum int           `json:"prev_page_num"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

type loanHistoryResponse struct {
	Status string        `json:"status"`
	Books  []loanPayload `json:"books"`
}

// writeJSON renders v through jsoniter instead of gin's default encoder.
func writeJSON(c *gin.Context, code int, v any) {
	body, marshalErr := json.Marshal(v)
	if marshalErr != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(code, contentTypeJSON, body)
}

func respondMessage(c *gin.Context, code int, status string, message string) {
	writeJSON(c, code, messageResponse{Status: status, Message: message})
}

func respondError(c *gin.Context, err error) {
	respondMessage(c, statusCodeFor(err), statusError, err.Error())
}

// statusCodeFor maps the domain error taxonomy to HTTP status codes.
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, lending.ErrBookNotFound),
		errors.Is(err, lending.ErrLoanNotFound),
		errors.Is(err, lending.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, lending.ErrBookUnavailable),
		errors.Is(err, lending.ErrDuplicateISBN),
		errors.Is(err, lending.ErrInvalidISBN),
		errors.Is(err, lending.ErrUserExists):
		return http.StatusBadRequest

	case errors.Is(err, lending.ErrNotBorrowedByUser),
		errors.Is(err, lending.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, lending.ErrOpenLoanConflict):
		return http.StatusConflict

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenRevoked):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

func bookToPayload(book lending.Book) bookPayload {
	return bookPayload{
		ID:        book.ID,
		Title:     book.Title,
		ISBN:      book.ISBN,
		Available: book.Available,
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
}

func loansToPayload(records []lending.LoanRecord) []loanPayload {
	payload := make([]loanPayload, 0, len(records))

	for _, record := range records {
		payload = append(payload, loanPayload{
			ID:         record.ID,
			UserID:     record.UserID,
			BookID:     record.BookID,
			Title:      record.Title,
			ISBN:       record.ISBN,
			BorrowedAt: record.BorrowedAt,
			ReturnedAt: record.ReturnedAt,
		})
	}

	return payload
}
