package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/services"
)

func SignUpController(router gin.IRouter, authSvc *services.AuthService, captcha services.CaptchaVerifier, log *zap.Logger) {
	router.POST("/auth/signup", func(c *gin.Context) {
		Signup(c, authSvc, captcha, log)
	})
}

func Signup(c *gin.Context, authSvc *services.AuthService, captcha services.CaptchaVerifier, log *zap.Logger) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	check := services.CaptchaCheck{
		Token:     req.CaptchaToken,
		Action:    "signup",
		RemoteIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if err := captcha.Verify(c.Request.Context(), check); err != nil {
		response.Error(c, log, err)
		return
	}

	user, err := authSvc.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your inbox to verify your email address.",
		"user":    user,
	})
}
