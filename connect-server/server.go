package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-training/deezer-connect/pkg/config"
	"github.com/go-training/deezer-connect/pkg/core"
	"github.com/go-training/deezer-connect/pkg/deezer"
	"github.com/go-training/deezer-connect/pkg/operation"
	"github.com/go-training/deezer-connect/pkg/store"

	ginslog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// Server drives the browser login flow and exposes the MCP tools.
type Server struct {
	cfg    config.Config
	client *deezer.Client
	logins core.LoginStore
	mcp    *server.MCPServer
	now    func() time.Time
}

// NewServer creates a Server. The Deezer client and login store are shared
// by every request.
func NewServer(cfg config.Config, client *deezer.Client, logins core.LoginStore) *Server {
	mcpServer := server.NewMCPServer(
		"deezer-connect",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(operation.ToolHandlerMiddleware()),
	)
	operation.RegisterSessionTools(mcpServer)

	return &Server{
		cfg:    cfg,
		client: client,
		logins: logins,
		mcp:    mcpServer,
		now:    time.Now,
	}
}

// withDeezer injects the client, credentials and a request ID.
func (s *Server) withDeezer(ctx context.Context) context.Context {
	ctx = core.WithClient(ctx, s.client)
	ctx = core.WithCredentials(ctx, core.Credentials{AppID: s.cfg.DeezerAppID(), Secret: s.cfg.Secret})
	return core.WithRequestID(ctx)
}

// ServeHTTP returns a streamable HTTP server for the MCP tools.
func (s *Server) ServeHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithHeartbeatInterval(30*time.Second),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return s.withDeezer(ctx)
		}),
	)
}

// ServeStdio serves the MCP tools over stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp, server.WithStdioContextFunc(s.withDeezer))
}

// Router returns the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginslog.SetLogger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/login", s.handleLogin)
	router.GET("/callback", s.handleCallback)

	mcpHandler := gin.WrapH(s.ServeHTTP())
	mcpGroup := router.Group("/mcp", corsMiddleware())
	mcpGroup.OPTIONS("", func(c *gin.Context) {})
	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		mcpGroup.Handle(method, "", authMiddleware(s.cfg.MCPToken), mcpHandler)
	}

	return router
}

// handleLogin remembers a fresh state and redirects the browser to Deezer.
func (s *Server) handleLogin(c *gin.Context) {
	ctx := core.WithRequestID(c.Request.Context())
	logger := core.LoggerFromCtx(ctx)

	returnTo := c.Query("redirect")
	if returnTo != "" && !isLocalPath(returnTo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redirect must be a local path"})
		return
	}

	perms := s.cfg.Permissions()
	if raw, ok := c.GetQuery("perms"); ok {
		perms = deezer.ParsePermissions(splitCSV(raw))
	}

	state := uuid.New().String()
	redirectURI := s.cfg.BaseURL() + "/callback?" + url.Values{"state": {state}}.Encode()

	loginURL, err := s.client.LoginURL(s.cfg.DeezerAppID(), redirectURI, perms)
	if err != nil {
		logger.Error("Failed to build login URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := s.now()
	login := &core.PendingLogin{
		State:       state,
		RedirectURI: redirectURI,
		Perms:       permStrings(perms),
		ReturnTo:    returnTo,
		CreatedAt:   now.Unix(),
		ExpiresAt:   now.Add(s.cfg.LoginTTL).Unix(),
	}
	if err := s.logins.SaveLogin(ctx, login); err != nil {
		logger.Error("Failed to save pending login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	logger.Debug("Redirecting to deezer", "state", state, "perms", login.Perms)
	c.Redirect(http.StatusFound, loginURL)
}

// handleCallback redeems the state and exchanges the code.
func (s *Server) handleCallback(c *gin.Context) {
	ctx := core.WithRequestID(c.Request.Context())
	logger := core.LoggerFromCtx(ctx)

	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state is required"})
		return
	}

	login, err := s.logins.TakeLogin(ctx, state)
	if err != nil {
		if errors.Is(err, store.ErrLoginNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
			return
		}
		logger.Error("Failed to load pending login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load login"})
		return
	}

	// Deezer sends error_reason=user_denied when the user refuses.
	if reason := c.Query("error_reason"); reason != "" {
		logger.Info("Deezer login refused", "reason", reason)
		c.JSON(http.StatusForbidden, gin.H{"error": "access_denied", "error_reason": reason})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	session, err := s.client.CreateSession(ctx, s.cfg.DeezerAppID(), s.cfg.Secret, code)
	if err != nil {
		status, body := sessionError(err)
		logger.Warn("Deezer session creation failed", "status", status, "error", err)
		c.JSON(status, body)
		return
	}

	logger.Info("Deezer session created", "expires", session.Expires)

	if login.ReturnTo != "" {
		fragment := url.Values{
			"access_token": {session.AccessToken},
			"expires":      {strconv.FormatInt(session.Expires, 10)},
		}
		c.Redirect(http.StatusFound, login.ReturnTo+"#"+fragment.Encode())
		return
	}
	c.JSON(http.StatusOK, session)
}

// sessionError maps a CreateSession error to a response.
func sessionError(err error) (int, gin.H) {
	var (
		invalid     *deezer.InvalidArgumentError
		providerErr *deezer.ProviderError
		unknownErr  *deezer.UnknownResponseError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusInternalServerError, gin.H{"error": "server misconfigured", "details": invalid.Error()}
	case errors.As(err, &providerErr):
		return http.StatusBadGateway, gin.H{"error": providerErr.Body}
	case errors.As(err, &unknownErr):
		return http.StatusBadGateway, gin.H{"error": "unknown response from deezer"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gin.H{"error": "deezer did not answer in time"}
	default:
		return http.StatusBadGateway, gin.H{"error": "failed to reach deezer"}
	}
}

// isLocalPath accepts "/path" but not "//host" or absolute URLs.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func permStrings(perms []deezer.Permission) []string {
	if perms == nil {
		perms = deezer.DefaultPermissions
	}
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.String())
	}
	return out
}
