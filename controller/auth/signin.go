package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/services"
)

func SignInController(router gin.IRouter, authSvc *services.AuthService, log *zap.Logger) {
	router.POST("/auth/signin", func(c *gin.Context) {
		var req dto.SigninRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		tokens, err := authSvc.Signin(c.Request.Context(), req)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, tokens)
	})
}

// FederatedController accepts the ID token returned by a provider sign-in on the
// client, such as Google.
func FederatedController(router gin.IRouter, authSvc *services.AuthService, log *zap.Logger) {
	router.POST("/auth/federated", func(c *gin.Context) {
		var req dto.FederatedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		me, err := authSvc.Federated(c.Request.Context(), req.IDToken)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, me)
	})
}
