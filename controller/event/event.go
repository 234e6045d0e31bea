package event

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/response"
	"volunteerhub/dto"
	"volunteerhub/middleware"
	"volunteerhub/model"
	"volunteerhub/services"
)

func EventController(router gin.IRouter, events *services.EventService, log *zap.Logger) {
	routes := router.Group("/events")
	{
		routes.GET("", func(c *gin.Context) {
			var q dto.CalendarQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				response.BindError(c, err)
				return
			}
			list, err := events.Calendar(c.Request.Context(), middleware.SessionFrom(c), q)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, dto.NewEventResponses(list))
		})

		routes.GET("/tasks", func(c *gin.Context) {
			list, err := events.Tasks(c.Request.Context(), middleware.SessionFrom(c))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, dto.NewEventResponses(list))
		})

		routes.GET("/:id", func(c *gin.Context) {
			ev, err := events.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, dto.NewEventResponse(*ev))
		})

		routes.POST("", func(c *gin.Context) {
			var req dto.CreateEventRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			created, err := events.Create(c.Request.Context(), middleware.SessionFrom(c), req)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			if len(created) == 1 {
				c.JSON(http.StatusCreated, dto.NewEventResponse(created[0]))
				return
			}
			c.JSON(http.StatusCreated, gin.H{"seriesId": created[0].SeriesID, "events": dto.NewEventResponses(created)})
		})

		routes.PUT("/:id", func(c *gin.Context) {
			var req dto.UpdateEventRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			ev, err := events.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req)
			respond(c, log, ev, err)
		})

		routes.POST("/:id/start", func(c *gin.Context) {
			ev, err := events.Start(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			respond(c, log, ev, err)
		})

		routes.POST("/:id/complete", func(c *gin.Context) {
			ev, err := events.Complete(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			respond(c, log, ev, err)
		})

		routes.POST("/:id/cancel", func(c *gin.Context) {
			var req dto.CancelEventRequest
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				response.BindError(c, err)
				return
			}
			ev, err := events.Cancel(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req.Confirm)
			respond(c, log, ev, err)
		})

		routes.POST("/:id/announcements", func(c *gin.Context) {
			var req dto.AnnouncementRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			n, err := events.Announce(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req.Message)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"notified": n})
		})
	}
}

// SignupController serves joining and leaving events.
func SignupController(router gin.IRouter, events *services.EventService, log *zap.Logger) {
	routes := router.Group("/events/:id")
	{
		routes.POST("/signup", func(c *gin.Context) {
			ev, err := events.SignUp(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			respond(c, log, ev, err)
		})

		routes.DELETE("/signup", func(c *gin.Context) {
			ev, err := events.Withdraw(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
			respond(c, log, ev, err)
		})

		routes.POST("/participants", func(c *gin.Context) {
			var req dto.AddParticipantRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			ev, err := events.AddParticipant(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req.Email)
			respond(c, log, ev, err)
		})

		routes.DELETE("/participants/:email", func(c *gin.Context) {
			ev, err := events.RemoveParticipant(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), c.Param("email"))
			respond(c, log, ev, err)
		})
	}
}

func respond(c *gin.Context, log *zap.Logger, ev *model.Event, err error) {
	if err != nil {
		response.Error(c, log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventResponse(*ev))
}
