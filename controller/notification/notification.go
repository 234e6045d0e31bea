package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/services"
)

// NotificationController serves the polling inbox. Clients poll GET /notifications.
func NotificationController(router gin.IRouter, notifications *services.NotificationService, log *zap.Logger) {
	routes := router.Group("/notifications")
	{
		routes.GET("", func(c *gin.Context) {
			var q dto.NotificationQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				response.BindError(c, err)
				return
			}
			list, err := notifications.List(c.Request.Context(), middleware.SessionFrom(c), q.Limit)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		routes.GET("/:id", func(c *gin.Context) {
			n, err := notifications.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, n)
		})

		routes.POST("/messages", func(c *gin.Context) {
			var req dto.MessageRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			n, err := notifications.SendMessage(c.Request.Context(), middleware.SessionFrom(c), req)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusCreated, n)
		})
	}
}
