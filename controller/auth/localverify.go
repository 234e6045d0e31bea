package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/services"
)

// LocalVerifyController confirms emails for the development identity provider; the
// link is the one mailed by /auth/verification-email.
func LocalVerifyController(router gin.IRouter, identity *services.LocalIdentity, log *zap.Logger) {
	router.GET("/auth/local/verify", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}
		email, err := identity.ConfirmEmail(token)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Email verified", "email": email})
	})
}
