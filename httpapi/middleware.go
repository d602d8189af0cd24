package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hellobooks/lending-api/lending"
)

const (
	principalKey = "principal"

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	bearerPrefix = "Bearer "
)

// requestID tags every request with a correlation id, keeping one that
// the caller already supplied.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Header(headerRequestID, id)
		c.Next()
	}
}

// tokenRequired resolves the Bearer token to a principal and stores it
// in the request context. Requests without a valid token are rejected.
func (s *server) tokenRequired(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondMessage(c, http.StatusUnauthorized, statusError, "provide a valid auth token")
		c.Abort()

		return
	}

	principal, authErr := s.auth.Authenticate(c.Request.Context(), token)
	if authErr != nil {
		respondMessage(c, http.StatusUnauthorized, statusError, authErr.Error())
		c.Abort()

		return
	}

	c.Set(principalKey, principal)
	c.Next()
}

// adminRequired rejects requests whose principal lacks admin privilege.
func (s *server) adminRequired(c *gin.Context) {
	if !principalFrom(c).IsAdmin {
		respondMessage(c, http.StatusForbidden, statusError, lending.ErrForbidden.Error())
		c.Abort()

		return
	}

	c.Next()
}

func principalFrom(c *gin.Context) lending.Principal {
	principal, _ := c.Get(principalKey)

	typed, ok := principal.(lending.Principal)
	if !ok {
		return lending.Principal{}
	}

	return typed
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(headerAuthorization)
	if header == "" {
		return ""
	}

	return strings.TrimPrefix(header, bearerPrefix)
}
