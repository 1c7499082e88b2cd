package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// setupRoutes configures the page routes and the forwarding fallback
func (s *Server) setupRoutes() {
	// Health check endpoint (no visitor session)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "frontend",
		})
	})

	pages := s.engine.Group("/")
	pages.Use(securityHeadersMiddleware())
	pages.Use(cacheControlMiddleware())
	pages.Use(s.visitorMiddleware())
	{
		pages.GET("/", s.homePage)
		pages.POST("/projects", s.fetchProjects)
		pages.POST("/connection", s.testConnection)

		pages.GET("/signin", s.signinPage)
		pages.POST("/signin", s.signin)
		pages.POST("/signout", s.signout)

		pages.GET("/dashboard", s.requireAuth(), s.dashboardPage)
	}

	// Everything else belongs to the backend
	s.engine.NoRoute(func(c *gin.Context) {
		s.forwarder.ServeHTTP(c.Writer, c.Request)
		// Commit the relayed status even when the body is empty, or gin writes its own 404 page
		c.Writer.WriteHeaderNow()
	})
}
