package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/model"
	"volunteerhub/services"
)

const sessionKey = "session"

// UserLookup resolves the user document of an authenticated caller; nil means the
// account has not been registered yet.
type UserLookup interface {
	Lookup(ctx context.Context, email string) (*model.User, error)
}

type AdminChecker interface {
	IsAdmin(email string) bool
}

// Authenticate verifies the bearer ID token and stores the caller's session.
func Authenticate(verifier services.TokenVerifier, users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			log.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrInvalidToken.Error()})
			return
		}

		email := model.NormalizeEmail(claims.Email)
		user, err := users.Lookup(c.Request.Context(), email)
		if err != nil {
			log.Error("load session user", zap.String("email", email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(sessionKey, &model.Session{
			UID:           claims.UID,
			Email:         email,
			Name:          claims.Name,
			EmailVerified: claims.EmailVerified,
			User:          user,
		})
		c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate, or nil.
func SessionFrom(c *gin.Context) *model.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*model.Session)
	return sess
}

func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthenticated.Error()})
			return
		}
		if !sess.EmailVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrEmailNotVerified.Error()})
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers without a role. With roles given, the caller must
// hold one of them.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthenticated.Error()})
			return
		}
		if sess.Role() == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrRoleRequired.Error()})
			return
		}
		if len(roles) > 0 && !sess.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func RequireAdmin(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || !admins.IsAdmin(sess.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
