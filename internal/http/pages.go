package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanctumfront/internal/apiclient"
	"github.com/sanctumfront/internal/apipaths"
	"github.com/sanctumfront/internal/domain"
	"github.com/sanctumfront/internal/session"
)

const defaultLoginError = "Invalid credentials. Please try again."

// pageData is what every template renders from
type pageData struct {
	Title       string
	Session     session.Snapshot
	Environment string
	BackendURL  string
	FrontendURL string

	Projects      []domain.Project
	ProjectsError string
	Connection    *domain.ConnectionStatus

	Email      string
	LoginError string
	Debug      string
}

// LoginForm represents the sign-in form
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (s *Server) newPage(title string, snap session.Snapshot) pageData {
	return pageData{
		Title:       title,
		Session:     snap,
		Environment: s.config.Environment,
		BackendURL:  s.config.BackendURL,
		FrontendURL: s.config.FrontendURL,
	}
}

// currentSession refreshes the visitor's auth state from the backend
func (s *Server) currentSession(c *gin.Context) (*session.Visitor, session.Snapshot, bool) {
	v, ok := getVisitorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session unavailable"})
		return nil, session.Snapshot{}, false
	}
	v.Auth.CheckAuth(c.Request.Context())
	return v, v.Auth.Snapshot(), true
}

// homePage renders the auth status card and the demo actions
func (s *Server) homePage(c *gin.Context) {
	_, snap, ok := s.currentSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "home.html", s.newPage("Home", snap))
}

// fetchProjects loads the project list through the visitor's client
func (s *Server) fetchProjects(c *gin.Context) {
	v, snap, ok := s.currentSession(c)
	if !ok {
		return
	}
	page := s.newPage("Home", snap)

	slog.DebugContext(c.Request.Context(), "fetching projects")
	resp, err := v.Client.Get(c.Request.Context(), apipaths.Projects)
	if err == nil {
		err = resp.Decode(&page.Projects)
	}
	if err != nil {
		slog.WarnContext(c.Request.Context(), "failed to fetch projects", "error", err)
		page.ProjectsError = projectsErrorMessage(err)
		page.Projects = nil
	} else {
		slog.DebugContext(c.Request.Context(), "projects fetched", "count", len(page.Projects))
	}

	c.HTML(http.StatusOK, "home.html", page)
}

// projectsErrorMessage returns the client's message, like "Request failed with status code 401"
func projectsErrorMessage(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to fetch projects"
}

// testConnection runs the connectivity self-test and renders the result card
func (s *Server) testConnection(c *gin.Context) {
	v, snap, ok := s.currentSession(c)
	if !ok {
		return
	}
	page := s.newPage("Home", snap)

	status := v.Client.TestConnection(c.Request.Context(), s.config.ConnectionTestTimeout)
	slog.InfoContext(c.Request.Context(), "connection test finished",
		"success", status.Success,
		"status", status.StatusCode,
		"response_time_ms", status.ResponseTimeMs,
	)
	page.Connection = &status

	c.HTML(http.StatusOK, "home.html", page)
}

// signinPage renders the form, or the already-logged-in view
func (s *Server) signinPage(c *gin.Context) {
	_, snap, ok := s.currentSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "signin.html", s.newPage("Login", snap))
}

// signin submits the form through the session manager
func (s *Server) signin(c *gin.Context) {
	v, ok := getVisitorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session unavailable"})
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid login form", "error", err)
		page := s.newPage("Login", v.Auth.Snapshot())
		page.Email = form.Email
		page.LoginError = "Please enter a valid email address and password."
		c.HTML(http.StatusBadRequest, "signin.html", page)
		return
	}

	result := v.Auth.Login(c.Request.Context(), form.Email, form.Password)
	if result.OK {
		c.Redirect(http.StatusSeeOther, "/signin")
		return
	}

	page := s.newPage("Login", v.Auth.Snapshot())
	page.Email = form.Email
	page.LoginError = result.ErrorMessage
	if page.LoginError == "" {
		page.LoginError = defaultLoginError
	}
	if debug, err := json.MarshalIndent(result, "", "  "); err == nil {
		page.Debug = string(debug)
	}
	c.HTML(http.StatusOK, "signin.html", page)
}

// signout clears the session remotely and locally
func (s *Server) signout(c *gin.Context) {
	v, ok := getVisitorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session unavailable"})
		return
	}
	if err := v.Auth.Logout(c.Request.Context()); err != nil {
		slog.WarnContext(c.Request.Context(), "logout failed", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// requireAuth redirects anonymous visitors to the sign-in page
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, snap, ok := s.currentSession(c)
		if !ok {
			c.Abort()
			return
		}
		if !snap.Authenticated() {
			c.Redirect(http.StatusFound, "/signin")
			c.Abort()
			return
		}
		c.Set("snapshot", snap)
		c.Next()
	}
}

// dashboardPage renders protected content for the signed-in user
func (s *Server) dashboardPage(c *gin.Context) {
	snap, _ := c.Get("snapshot")
	current, ok := snap.(session.Snapshot)
	if !ok {
		c.Redirect(http.StatusFound, "/signin")
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", s.newPage("Dashboard", current))
}
