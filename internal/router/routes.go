package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/auth"
	"github.com/majorossy/phreshfoods.com-sub003/internal/config"
	"github.com/majorossy/phreshfoods.com-sub003/internal/handler"
	middlewarepkg "github.com/majorossy/phreshfoods.com-sub003/internal/middleware"
	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
)

const refreshPath = "/admin/refresh"

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Businesses *handler.BusinessesHandler
	Admin      *handler.AdminHandler
	Config     *handler.ConfigHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.GET("/config", handlers.Config.Get)
	e.GET("/businesses", handlers.Businesses.List)
	e.GET("/cities", handlers.Businesses.Cities)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole(service.RoleAdmin))
	admin.POST("/upload-csv", handlers.Admin.UploadCSV)
	admin.GET("/businesses.xlsx", handlers.Admin.Export)
	admin.POST("/refresh", handlers.Admin.Refresh, middlewarepkg.RateLimiter(cfg.RateLimitRefresh, refreshPath))
}
