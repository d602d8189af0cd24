package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/loanquery"
)

// AuthService resolves and manages principals.
type AuthService interface {
	Register(ctx context.Context, username string, email string, password string, isAdmin bool) (string, error)
	Login(ctx context.Context, username string, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (lending.Principal, error)
}

// Catalog is the book catalog surface used by the admin CRUD endpoints.
type Catalog interface {
	GetBook(ctx context.Context, bookID int64) (lending.Book, error)
	AddBook(ctx context.Context, title string, isbn string) (lending.Book, error)
	UpdateBookTitle(ctx context.Context, bookID int64, title string) (lending.Book, error)
	DeleteBook(ctx context.Context, bookID int64) error
	ListBooks(ctx context.Context, page lending.PageRequest) ([]lending.Book, int64, error)
}

// Borrower runs the borrow/return state machine.
type Borrower interface {
	Borrow(ctx context.Context, userID int64, bookID int64) (lending.Loan, error)
	Return(ctx context.Context, principal lending.Principal, bookID int64) (lending.Loan, error)
}

// LoanQueries answers loan listing queries.
type LoanQueries interface {
	QueryLoans(ctx context.Context, principal lending.Principal, filters loanquery.Filters, page lending.PageRequest) (loanquery.Result, error)
}

type server struct {
	auth     AuthService
	catalog  Catalog
	borrower Borrower
	loans    LoanQueries
}

// NewRouter wires all routes under /api/v2.
func NewRouter(auth AuthService, catalog Catalog, borrower Borrower, loans LoanQueries) *gin.Engine {
	s := &server{
		auth:     auth,
		catalog:  catalog,
		borrower: borrower,
		loans:    loans,
	}

	router := gin.New()
	router.Use(requestID(), gin.Recovery())

	api := router.Group("/api/v2")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/logout", s.logout)
	}

	books := api.Group("/books", s.tokenRequired)
	{
		books.GET("", s.listBooks)
		books.GET("/:id", s.getBook)
		books.POST("", s.adminRequired, s.createBook)
		books.PUT("/:id", s.adminRequired, s.updateBook)
		books.DELETE("/:id", s.adminRequired, s.deleteBook)
	}

	userBooks := api.Group("/users/books", s.tokenRequired)
	{
		userBooks.GET("", s.listLoans)
		userBooks.POST("/:id", s.borrowBook)
		userBooks.PUT("/:id", s.returnBook)
	}

	return router
}
