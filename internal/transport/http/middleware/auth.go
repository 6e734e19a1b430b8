package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/infra/security"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// Authenticate resolves an optional Bearer token. A valid token attaches the
// caller's identity and scopes to the request context; an absent header
// leaves the request anonymous. Only a malformed or invalid token rejects
// the request, so public reads stay public while the rate limiter can still
// partition authenticated traffic by user.
func Authenticate(verifier *security.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				c.Header("Token-Expired", "true")
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid access token"))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(ScopesKey, claims.Scopes)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.Subject
		}

		c.Next()
	}
}

// RequireScope rejects requests whose token does not grant the given scope.
// Anonymous requests are rejected with 401, authenticated ones without the
// scope with 403.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		scopes, _ := c.Get(ScopesKey)
		granted, _ := scopes.([]string)
		for _, s := range granted {
			if s == scope {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient scope"))
	}
}
