package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blinkforge/blinkforge-api/internal/container"
	handlers "github.com/blinkforge/blinkforge-api/internal/interface/http"
	"github.com/blinkforge/blinkforge-api/internal/interface/middleware"
	"github.com/blinkforge/blinkforge-api/pkg/helpers"
)

// UIModule wires the server-held client UI state.
// Public: GET /api/pricing (static catalog)
// Protected: GET /api/ui/view, POST /api/ui/navigate,
// POST /api/ui/dashboard/load, GET /api/ui/dashboard,
// DELETE /api/ui/dashboard/projects/:id
type UIModule struct {
	Handler *handlers.UIHandler
	JWT     *helpers.JWTManager
}

func NewUIModule(h *handlers.UIHandler, jwt *helpers.JWTManager) *UIModule {
	return &UIModule{Handler: h, JWT: jwt}
}

func (m *UIModule) Register(rg *gin.RouterGroup) {
	pricingLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/pricing", pricingLimiter, m.Handler.Pricing)

	auth := rg.Group("/ui")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/view", m.Handler.CurrentView)
		auth.POST("/navigate", m.Handler.Navigate)
		auth.POST("/dashboard/load", m.Handler.LoadDashboard)
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.DELETE("/dashboard/projects/:id", m.Handler.DeleteProject)
	}
}
