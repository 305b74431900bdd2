package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blinkforge/blinkforge-api/internal/container"
	handlers "github.com/blinkforge/blinkforge-api/internal/interface/http"
	"github.com/blinkforge/blinkforge-api/internal/interface/middleware"
	"github.com/blinkforge/blinkforge-api/pkg/helpers"
)

// ProjectModule wires the project store endpoints. All routes require a
// live session; every operation is scoped to the authenticated user.
// POST /api/projects, GET /api/projects, DELETE /api/projects/:id,
// GET /api/projects/search
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	JWT     *helpers.JWTManager
}

func NewProjectModule(h *handlers.ProjectHandler, jwt *helpers.JWTManager) *ProjectModule {
	return &ProjectModule{Handler: h, JWT: jwt}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/projects", m.Handler.Create)
		auth.GET("/projects", m.Handler.List)
		auth.GET("/projects/search", m.Handler.Search)
		auth.DELETE("/projects/:id", m.Handler.Delete)
	}
}
