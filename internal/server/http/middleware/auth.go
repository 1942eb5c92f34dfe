package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/Zaqui712/B-FO/internal/pkg/auth"
)

// PeerTokenHeader carries the shared secret presented by the peer system.
const PeerTokenHeader = "X-Peer-Token"

// TokenVerifier checks a presented peer token.
type TokenVerifier interface {
	Verify(token string) error
}

// PeerAuth rejects requests whose peer token does not verify.
func PeerAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := verifier.Verify(extractToken(c))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, pkgAuth.ErrInvalidToken):
			c.AbortWithStatus(http.StatusUnauthorized)
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(PeerTokenHeader)); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
