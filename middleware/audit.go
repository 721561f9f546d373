package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// proxy headers checked in order before falling back to RemoteAddr
var ipHeaders = []string{"X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"}

// AuditMiddleware extracts and stores IP address for audit logging
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, getClientIP(c))
		c.Next()
	}
}

func getClientIP(c *gin.Context) string {
	// X-Forwarded-For can carry a chain, the first hop is the client
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); isValidIP(ip) {
			return ip
		}
	}

	for _, header := range ipHeaders {
		if ip := strings.TrimSpace(c.GetHeader(header)); ip != "" && isValidIP(ip) {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// GetIPFromContext retrieves IP address from gin context
func GetIPFromContext(c *gin.Context) string {
	if ip, ok := c.Get(clientIPKey); ok {
		if ipStr, ok := ip.(string); ok {
			return ipStr
		}
	}
	return getClientIP(c)
}
