package middleware

import (
	"context"
	"net/http"
	"strings"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/metrics"
	"transferportal/internal/services"
	"transferportal/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser validates access tokens; services.TokenIssuer satisfies it.
type TokenParser interface {
	Parse(token string) (services.Claims, error)
}

// AccountLookup loads the account behind a token; services.UserStore satisfies it.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// Auth requires a valid JWT from the Authorization header, or from the token query
// parameter for websocket clients, and stores userID/userRole in the context.
// The account is reloaded on every request, so deleted or disabled users lose access
// before their token expires and the stored role wins over the one in the token.
func Auth(tokens TokenParser, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("token"))
		}
		if raw == "" {
			metrics.IncAuthFailure("missing_token")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			metrics.IncAuthFailure("invalid_token")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		user, err := accounts.GetByID(c.Request.Context(), claims.UserID)
		switch {
		case domain.IsNotFound(err):
			metrics.IncAuthFailure("unknown_account")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "account no longer exists")
			return
		case err != nil:
			utils.LogError(GetRequestID(c), "auth", "load_account", err, "user_id", claims.UserID)
			abortAuth(c, http.StatusInternalServerError, "internal_error", "failed to load account")
			return
		case user.Status != domain.UserActive:
			metrics.IncAuthFailure("disabled")
			abortAuth(c, http.StatusForbidden, "forbidden", "account is disabled")
			return
		}
		c.Set(userIDKey, user.ID)
		c.Set(userRoleKey, user.Role)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// GetRequestContext returns the authenticated caller, zero when Auth did not run.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{UserID: c.GetInt64(userIDKey), Role: c.GetString(userRoleKey)}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
