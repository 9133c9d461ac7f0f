package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leafscan/internal/service"
)

// RouterDeps agrupa lo que necesita NewRouter.
type RouterDeps struct {
	Logger      *zap.Logger
	Auth        *service.AuthService
	AuthH       *AuthHandler
	ScanH       *ScanHandler
	HealthH     *HealthHandler
	CORSOrigins []string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(d RouterDeps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(d.CORSOrigins), jsonContentTypeMiddleware())

	r.GET("/ping", d.HealthH.Ping)
	r.GET("/healthz", d.HealthH.Healthz)

	auth := r.Group("/auth")
	auth.POST("/signup", d.AuthH.Signup)
	auth.POST("/login", d.AuthH.Login)
	auth.GET("/me", d.AuthH.Me)

	// Rutas sin prefijo que usan los clientes viejos.
	r.POST("/signup", d.AuthH.Signup)
	r.POST("/login", d.AuthH.Login)

	protected := r.Group("", BearerAuthMiddleware(d.Auth))
	protected.POST("/predict", d.ScanH.Predict)
	protected.GET("/scans", d.ScanH.List)
	protected.DELETE("/scans/:id", d.ScanH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
