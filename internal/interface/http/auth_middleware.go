package http

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yanqian/meetmail/internal/infra/config"
)

// authMiddleware verifies HS256 bearer tokens when auth is enabled.
func authMiddleware(cfg config.AuthConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing bearer token", nil))
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			logger.Warn("token rejected", "path", c.Request.URL.Path, "error", err)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid bearer token", err))
			return
		}

		if sub, subErr := token.Claims.GetSubject(); subErr == nil && sub != "" {
			c.Set("subject", sub)
		}
		c.Next()
	}
}
