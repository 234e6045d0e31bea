package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/model"
	"volunteerhub/services"
)

// SessionController serves the endpoints of a signed-in caller that are available
// before the email is verified or a role is selected. router must authenticate.
func SessionController(router gin.IRouter, authSvc *services.AuthService, users *services.UserService, log *zap.Logger) {
	routes := router.Group("/auth")
	{
		routes.POST("/signout", func(c *gin.Context) {
			if err := authSvc.Signout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
		})

		routes.POST("/verification-email", func(c *gin.Context) {
			if err := authSvc.SendVerificationEmail(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
		})

		routes.GET("/me", func(c *gin.Context) {
			me, err := authSvc.Me(c.Request.Context(), middleware.SessionFrom(c))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, me)
		})

		routes.POST("/role", func(c *gin.Context) {
			var req dto.RoleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			user, err := users.SelectRole(c.Request.Context(), middleware.SessionFrom(c), model.Role(req.Role))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})
	}
}
