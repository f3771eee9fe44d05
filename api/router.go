package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/auth"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/Domenick1991/railbooking/internal/service/search"
	"github.com/Domenick1991/railbooking/internal/service/tickets"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Search  search.SearchUseCase
	Tickets tickets.TicketUseCase
	Catalog catalog.CatalogUseCase
	Auth    auth.AuthUseCase
}

type RouterOptions struct {
	Logger      *slog.Logger
	CORSOrigins []string
	// RateLimiter guards book, check, pdf and auth routes; nil disables limiting.
	RateLimiter *RateLimiter
}

// NewRouter builds the gin engine serving the /api surface.
func NewRouter(services Services, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(opts.Logger), corsMiddleware(opts.CORSOrigins))

	router.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, "route not found")
	})

	api := router.Group("/api")
	guard := []gin.HandlerFunc{
		RequireAuth(services.Auth),
		RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin),
	}
	limiter := opts.RateLimiter
	if limiter == nil {
		limiter = NewRateLimiter(0)
	}

	NewTicketHandler(services.Search, services.Tickets).Register(api.Group("/tickets"), limiter.Middleware())
	NewCatalogHandler(services.Catalog).Register(api, guard...)
	NewAuthHandler(services.Auth).Register(api.Group("/auth", limiter.Middleware()), guard...)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
