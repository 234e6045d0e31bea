package feedback

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/services"
)

func FeedbackController(router gin.IRouter, feedback *services.FeedbackService, log *zap.Logger) {
	router.POST("/feedback", func(c *gin.Context) {
		var req dto.ResponseSubmission
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		fb, err := feedback.Submit(c.Request.Context(), middleware.SessionFrom(c), req)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, fb)
	})

	router.GET("/feedback", func(c *gin.Context) {
		overview, err := feedback.Overview(c.Request.Context(), middleware.SessionFrom(c))
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	})

	router.GET("/events/:id/feedback", func(c *gin.Context) {
		summary, err := feedback.ForEvent(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}
