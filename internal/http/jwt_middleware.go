package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storypals/internal/service"
)

const (
	authClaimsKey   = "auth_claims"
	wwwAuthenticate = `Bearer realm="storypals"`
)

// JWTAuthMiddleware exige un access token valido en Authorization y deja los
// claims en el contexto de gin. Cualquier 401 lleva WWW-Authenticate; el
// cliente de terminal lo usa para olvidar la sesion guardada.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrJWTExpired):
			abortUnauthorized(c, "token expired")
			return
		default:
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", wwwAuthenticate)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// requireClaims corta la request con 401 si no hay claims en el contexto.
func requireClaims(c *gin.Context) (service.Claims, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.UserID == "" {
		abortUnauthorized(c, "unauthorized")
		return service.Claims{}, false
	}
	return claims, true
}
