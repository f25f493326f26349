package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casedocs-backend/internal/bulkdocs"
	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/shared/config"
	"casedocs-backend/internal/shared/server/middleware"
	"casedocs-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config   config.Config
	CaseDocs *casedocs.Handler
	Bulk     *bulkdocs.Handler
}

// batch endpoints fan out into remote model calls, so they get a tighter
// rate limit bucket than plain reads.
var rateLimitRules = map[string]middleware.RateLimitRule{
	"BATCH":   {Rate: 1, Burst: 5},
	"DEFAULT": {Rate: 20, Burst: 40},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rateLimitRules,
			GroupFor: rateLimitGroup,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.CaseDocs.RegisterRoutes(api)
	deps.Bulk.RegisterRoutes(api)

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/cases/:caseId/documents/bulk",
		"/api/v1/cases/:caseId/documents/classify",
		"/api/v1/documents/detect":
		return "BATCH"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
