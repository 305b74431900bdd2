package router

import (
	"github.com/blinkforge/blinkforge-api/internal/application"
	"github.com/blinkforge/blinkforge-api/internal/container"
	pginfra "github.com/blinkforge/blinkforge-api/internal/infrastructure/postgres"
	handlers "github.com/blinkforge/blinkforge-api/internal/interface/http"
	"github.com/blinkforge/blinkforge-api/internal/router/modules"
	"github.com/blinkforge/blinkforge-api/internal/ui"
)

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	projectRepo := pginfra.NewProjectRepository(container.GetPGPool())
	userRepo := pginfra.NewUserRepository(container.GetPGPool())

	uiManager := ui.NewManager(projectRepo, container.GetLogger())

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		uiManager,
	)
	projectSvc := application.NewProjectService(
		projectRepo,
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		cfg.ESProjectsIndex,
		cfg.BuildPendingTTL,
	)

	userHandler := handlers.NewUserHandler(userSvc, container.GetJWT(), container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	projectHandler := handlers.NewProjectHandler(projectSvc, uiManager, container.GetLogger())
	uiHandler := handlers.NewUIHandler(uiManager, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewProjectModule(projectHandler, container.GetJWT()))
	r.Add(modules.NewUIModule(uiHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
