package user

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

// ProfileController serves the caller's own user document. router must authenticate.
func ProfileController(router gin.IRouter, users *services.UserService, log *zap.Logger) {
	routes := router.Group("/users")
	{
		routes.GET("/me", func(c *gin.Context) {
			user, err := users.Get(c.Request.Context(), middleware.SessionFrom(c).Email)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})

		routes.PUT("/me", func(c *gin.Context) {
			var req dto.UpdateProfileRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			user, err := users.UpdateProfile(c.Request.Context(), middleware.SessionFrom(c), req)
			if err != nil {
				response.Error(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})
	}
}

// DirectoryController lists users by role for coordinators adding participants.
func DirectoryController(router gin.IRouter, users *services.UserService, log *zap.Logger) {
	router.GET("/users", middleware.RequireRole(model.RoleCoordinator), func(c *gin.Context) {
		var q dto.RoleQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			response.BindError(c, err)
			return
		}
		list, err := users.ListByRole(c.Request.Context(), model.Role(q.Role))
		if err != nil {
			response.Error(c, log, err)
			return
		}
		out := make([]dto.UserSummary, 0, len(list))
		for _, u := range list {
			out = append(out, dto.UserSummary{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: string(u.Role)})
		}
		c.JSON(http.StatusOK, out)
	})
}

// AdminController changes roles without the one-time restriction.
func AdminController(router gin.IRouter, users *services.UserService, log *zap.Logger) {
	routes := router.Group("/admin", middleware.RequireAdmin(users))
	{
		routes.PUT("/users/:email/role", func(c *gin.Context) {
			var req dto.RoleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BindError(c, err)
				return
			}
			user, err := users.SetRole(c.Request.Context(), c.Param("email"), model.Role(req.Role))
			if err != nil {
				response.Error(c, log, err)
				return
			}
			log.Info("admin role change", zap.String("admin", middleware.SessionFrom(c).Email), zap.String("email", user.Email))
			c.JSON(http.StatusOK, user)
		})
	}
}
