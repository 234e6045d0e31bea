package helprequest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/model"
	"volunteerhub/services"
)

func HelpRequestController(router gin.IRouter, requests *services.HelpRequestService, captcha services.CaptchaVerifier, log *zap.Logger) {
	routes := router.Group("/help-requests")
	{
		routes.POST("", func(c *gin.Context) {
			var req dto.HelpRequestInput
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			check := services.CaptchaCheck{
				Token:     req.CaptchaToken,
				Action:    "help_request",
				RemoteIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			}
			if err := captcha.Verify(c.Request.Context(), check); err != nil {
				response.Error(c, log, err)
				return
			}
			h, err := requests.Submit(c.Request.Context(), middleware.SessionFrom(c), req)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusCreated, h)
		})

		routes.GET("", func(c *gin.Context) {
			var q dto.HelpRequestQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				response.BindError(c, err)
				return
			}
			list, err := requests.List(c.Request.Context(), middleware.SessionFrom(c), model.HelpRequestStatus(q.Status))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		routes.GET("/:id", func(c *gin.Context) {
			h, err := requests.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, h)
		})

		routes.POST("/:id/approve", func(c *gin.Context) {
			resolve(c, log, requests.Approve)
		})

		routes.POST("/:id/reject", func(c *gin.Context) {
			resolve(c, log, requests.Reject)
		})
	}
}

type resolveFunc func(ctx context.Context, sess *model.Session, id, notificationID string) (*model.HelpRequest, error)

func resolve(c *gin.Context, log *zap.Logger, fn resolveFunc) {
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h, err := fn(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req.NotificationID)
	if err != nil {
		response.Error(c, log, err)
		return
	}
	c.JSON(http.StatusOK, h)
}
