package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hellobooks/lending-api/lending"
)

const (
	defaultTokenTTL = 24 * time.Hour

	claimUserID = "user_id"
	claimJTI    = "jti"
	claimExp    = "exp"
	claimIat    = "iat"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password, so callers cannot probe for existing accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken covers malformed, expired, and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid or expired token, please log in")

	// ErrTokenRevoked marks a structurally valid token that was logged out.
	ErrTokenRevoked = errors.New("token was revoked, please log in again")
)

// UserStore is the persistence surface for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, username string, email string, passwordHash string, isAdmin bool) (lending.User, error)
	GetUserByID(ctx context.Context, userID int64) (lending.User, error)
	GetUserByUsername(ctx context.Context, username string) (lending.User, error)
}

// TokenBlacklist is the persistence surface for revoked tokens.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti uuid.UUID, revokedAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error)
}

// Service registers, authenticates, and logs out users.
type Service struct {
	users    UserStore
	tokens   TokenBlacklist
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// Option defines a functional option for configuring a Service.
type Option func(*Service)

// WithTokenTTL overrides the default 24h token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// WithClock overrides the time source used for token claims and revocations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an identity service. The secret signs and verifies
// access tokens.
func NewService(users UserStore, tokens TokenBlacklist, secret []byte, options ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		secret:   secret,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Register creates an account and returns a fresh access token.
// Returns lending.ErrUserExists if username or email is already taken.
func (s *Service) Register(ctx context.Context, username string, email string, password string, isAdmin bool) (string, error) {
	hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if hashErr != nil {
		return "", hashErr
	}

	user, createErr := s.users.CreateUser(ctx, username, email, string(hash), isAdmin)
	if createErr != nil {
		return "", createErr
	}

	return s.issueToken(user.ID)
}

// Login verifies the password and returns a fresh access token.
func (s *Service) Login(ctx context.Context, username string, password string) (string, error) {
	user, getErr := s.users.GetUserByUsername(ctx, username)
	if getErr != nil {
		if errors.Is(getErr, lending.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", getErr
	}

	if compareErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); compareErr != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user.ID)
}

// Logout blacklists the token so it no longer authenticates.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	_, jti, parseErr := s.parseToken(tokenString)
	if parseErr != nil {
		return parseErr
	}

	return s.tokens.RevokeToken(ctx, jti, s.now())
}

// Authenticate resolves a token to the principal it carries. Blacklisted
// and expired tokens are rejected.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (lending.Principal, error) {
	userID, jti, parseErr := s.parseToken(tokenString)
	if parseErr != nil {
		return lending.Principal{}, parseErr
	}

	revoked, revokedErr := s.tokens.IsTokenRevoked(ctx, jti)
	if revokedErr != nil {
		return lending.Principal{}, revokedErr
	}

	if revoked {
		return lending.Principal{}, ErrTokenRevoked
	}

	user, getErr := s.users.GetUserByID(ctx, userID)
	if getErr != nil {
		if errors.Is(getErr, lending.ErrUserNotFound) {
			return lending.Principal{}, ErrInvalidToken
		}

		return lending.Principal{}, getErr
	}

	return user.AsPrincipal(), nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		claimUserID: userID,
		claimJTI:    uuid.NewString(),
		claimExp:    now.Add(s.tokenTTL).Unix(),
		claimIat:    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

func (s *Service) parseToken(tokenString string) (int64, uuid.UUID, error) {
	token, parseErr := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return s.secret, nil
	})
	if parseErr != nil || !token.Valid {
		return 0, uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, uuid.Nil, ErrInvalidToken
	}

	rawUserID, ok := claims[claimUserID].(float64) // json numbers decode as float64
	if !ok {
		return 0, uuid.Nil, ErrInvalidToken
	}

	rawJTI, ok := claims[claimJTI].(string)
	if !ok {
		return 0, uuid.Nil, ErrInvalidToken
	}

	jti, jtiErr := uuid.Parse(rawJTI)
	if jtiErr != nil {
		return 0, uuid.Nil, ErrInvalidToken
	}

	return int64(rawUserID), jti, nil
}
