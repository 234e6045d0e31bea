package verification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/services"
)

func VerificationController(router gin.IRouter, verifications *services.VerificationService, log *zap.Logger) {
	router.POST("/verifications", func(c *gin.Context) {
		var req dto.ResponseSubmission
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		record, err := verifications.Submit(c.Request.Context(), middleware.SessionFrom(c), req)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	})

	router.GET("/events/:id/verifications", func(c *gin.Context) {
		records, err := verifications.ForEvent(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, records)
	})
}
