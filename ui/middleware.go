package ui

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ClientIDHeader names the dashboard instance (a browser tab) whose
// selector changes are sequenced. Requests without it are one-shot.
const ClientIDHeader = "X-Client-ID"

const maxClientIDLen = 64

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(clientID())
	if gin.Mode() == gin.DebugMode {
		s.router.Use(gin.Logger())
	}
	s.router.Use(s.requestLogger())
}

// requestID keeps a caller supplied id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// clientID records the caller's dashboard id. Oversized ids are ignored.
func clientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(ClientIDHeader); id != "" && len(id) <= maxClientIDLen {
			c.Set("client_id", id)
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[Server] %s %s -> %d in %.2fms (request %s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			float64(time.Since(start).Nanoseconds())/1e6, c.GetString("request_id"))
	}
}
