package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxDecompressedBytes caps an inflated request body.
const MaxDecompressedBytes int64 = 10 << 20

// DecompressRequest inflates gzip request bodies sent by the peer. Content
// codings other than gzip and identity are refused with 415. Reading past
// limit inflated bytes fails with *http.MaxBytesError.
func DecompressRequest(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding"))); encoding {
		case "", "identity":
			c.Next()
			return
		case "gzip", "x-gzip":
		default:
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content encoding " + encoding})
			return
		}

		body := c.Request.Body
		reader, err := gzip.NewReader(body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed gzip body"})
			return
		}
		defer body.Close()
		defer reader.Close()

		c.Request.Body = http.MaxBytesReader(c.Writer, io.NopCloser(reader), limit)
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
