package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/server/handlers"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
)

// Handlers bundles the HTTP adapters the router wires up.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Ledger    *handlers.LedgerHandler
	Inventory *handlers.InventoryHandler
	Summary   *handlers.SummaryHandler
}

// New wires the Gin engine with required routes and middlewares. Protected
// routes consult the session guard through its token source before the
// handler runs.
func New(h Handlers, tokens backend.TokenSource, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/api/login", h.Auth.Login)
	r.POST("/api/signup", h.Auth.Signup)
	r.POST("/api/logout", h.Auth.Logout)
	r.GET("/api/session", h.Auth.Me)
	r.PUT("/api/activate", h.Auth.Activate)
	r.POST("/api/password-reset/request", h.Auth.RequestPasswordReset)
	r.PUT("/api/password-reset", h.Auth.ResetPassword)
	r.POST("/api/activation/resend", h.Auth.ResendActivation)

	protected := r.Group("/api", requireSession(tokens))
	protected.PUT("/profile", h.Auth.UpdateProfile)

	protected.GET("/transactions/:kind", h.Ledger.List)
	protected.POST("/transactions", h.Ledger.Create)
	protected.PUT("/transactions/:id", h.Ledger.Update)
	protected.DELETE("/transactions/:id", h.Ledger.Delete)

	protected.GET("/chickens", h.Inventory.Counts)
	protected.PUT("/chickens/:type", h.Inventory.Adjust)
	protected.GET("/chicken-history", h.Inventory.History)

	protected.GET("/summary", h.Summary.Summary)
	protected.POST("/reports", h.Summary.GenerateReport)
	protected.GET("/reports", h.Summary.ListReports)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requireSession rejects protected calls before any work happens when no
// live session exists.
func requireSession(tokens backend.TokenSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := tokens.Token(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
