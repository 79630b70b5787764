package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/container"
	handlers "taskflow/internal/interface/http"
	"taskflow/internal/interface/middleware"
)

// TaskModule wires the task CRUD routes, all behind auth.
type TaskModule struct {
	Handler *handlers.TaskHandler
}

func NewTaskModule(h *handlers.TaskHandler) *TaskModule {
	return &TaskModule{Handler: h}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetSessions(), container.GetJWT()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/tasks", m.Handler.List)
		auth.POST("/tasks", m.Handler.Create)
		auth.GET("/tasks/:id", m.Handler.Get)
		auth.PUT("/tasks/:id", m.Handler.Update)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
