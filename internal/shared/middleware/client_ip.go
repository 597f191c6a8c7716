package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextClientIP = "client_ip"

// ClientIPMiddleware resolves the caller's address once per request.
// X-Forwarded-For (first hop) wins over X-Real-IP, then RemoteAddr.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextClientIP, extractClientIP(c))
		c.Next()
	}
}

// ClientIP returns the address stored by ClientIPMiddleware, resolving it
// on demand when the middleware is not installed.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(ContextClientIP); ip != "" {
		return ip
	}
	return extractClientIP(c)
}

func extractClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return "127.0.0.1"
}
