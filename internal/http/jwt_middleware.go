package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leafscan/internal/service"
)

const authUserIDKey = "auth_user_id"

const detailUnauthenticated = "Could not validate credentials"

// BearerAuthMiddleware valida el access token y guarda el subject en el contexto.
// No consulta el almacen de usuarios.
func BearerAuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			abortDetail(c, http.StatusInternalServerError, "auth not configured")
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		userID, err := auth.Authorize(token)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene el id del usuario autenticado desde el contexto.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	abortDetail(c, http.StatusUnauthorized, detailUnauthenticated)
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
