package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsMiddleware permite los origenes configurados, con credenciales.
// Sin origenes devuelve un middleware que no hace nada.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Origin"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			// Con credenciales el navegador exige reflejar el origen.
			cfg.AllowOriginFunc = func(string) bool { return true }
		default:
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if cfg.AllowOriginFunc != nil {
		cfg.AllowOrigins = nil
	}
	if len(cfg.AllowOrigins) == 0 && cfg.AllowOriginFunc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cfg)
}
