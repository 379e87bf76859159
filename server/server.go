package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wagerhub/application"
	"wagerhub/domain/interfaces"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Dependencies are what the HTTP layer needs from the rest of the application
type Dependencies struct {
	Runner         *application.ServiceRunner
	Payments       *application.PaymentWorkflow
	LoginLimiter   RateLimiter
	Metrics        interfaces.Metrics // optional
	TrustedProxies []string
	Environment    string
}

// Server is the REST API
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// New builds the gin engine and registers every route
func New(addr string, deps Dependencies) (*Server, error) {
	if deps.Environment == "production" || deps.Environment == "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	// nil trusts no proxy, so ClientIP is the peer address
	if err := engine.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.Use(Recovery(), RequestLogger())
	if deps.Metrics != nil {
		engine.Use(Metrics(deps.Metrics))
	}

	h := NewHandler(deps.Runner, deps.Payments)
	registerRoutes(engine, h, deps)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func registerRoutes(engine *gin.Engine, h *Handler, deps Dependencies) {
	engine.GET("/health", h.Health)

	auth := RequireAuth(deps.Runner)
	api := engine.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", RateLimit(deps.LoginLimiter), h.Login)
		authRoutes.POST("/logout", auth, h.Logout)
		authRoutes.GET("/me", auth, h.Me)
	}

	p2p := api.Group("/p2p", auth)
	{
		p2p.POST("/wager", h.CreateWager)
		p2p.GET("/wagers", h.ListWagers)
		p2p.GET("/wager/:id", h.GetWager)
		p2p.POST("/wager/:id/accept", h.AcceptWager)
		p2p.POST("/wager/:id/decline", h.DeclineWager)
		p2p.POST("/wager/:id/cancel", h.CancelWager)
		p2p.POST("/wager/:id/complete", h.CompleteWager)
	}

	payments := api.Group("/payments", auth)
	{
		payments.GET("/wallet", h.GetWallet)
		payments.POST("/convert-to-tokens", h.ConvertToTokens)
		payments.POST("/convert-to-currency", h.ConvertToCurrency)
		payments.POST("/deposit", h.Deposit)
		payments.POST("/withdraw", h.Withdraw)
		payments.GET("/transactions", h.ListTransactions)
		payments.GET("/providers", h.ListProviders)
	}

	tokens := api.Group("/token-management", auth)
	{
		tokens.GET("/value", h.GetTokenValue)
		tokens.GET("/history", h.TokenValueHistory)
		tokens.PUT("/value", RequireAdmin(), h.SetTokenValue)
	}

	tournaments := api.Group("/tournaments", auth)
	{
		tournaments.GET("", h.ListTournaments)
		tournaments.GET("/:id", h.GetTournament)
		tournaments.GET("/:id/participants", h.GetTournamentParticipants)
		tournaments.POST("/:id/join", h.JoinTournament)
		tournaments.POST("", RequireStaff(), h.CreateTournament)
		tournaments.POST("/:id/settle", RequireStaff(), h.SettleTournament)
		tournaments.POST("/:id/cancel", RequireStaff(), h.CancelTournament)
	}

	games := api.Group("/games", auth)
	{
		games.GET("", h.ListGames)
		games.GET("/:id", h.GetGame)
		games.POST("", RequireStaff(), h.CreateGame)
		games.PUT("/:id/status", RequireStaff(), h.UpdateGameStatus)
	}

	dashboard := api.Group("/dashboard", auth)
	{
		dashboard.GET("", h.UserDashboard)
		dashboard.GET("/metrics", RequireStaff(), h.PlatformMetrics)
	}

	compliance := api.Group("/compliance", auth)
	{
		compliance.GET("/settings", h.GetComplianceSettings)
		compliance.PUT("/settings", RequireAdmin(), h.UpdateComplianceSettings)
		compliance.GET("/reviews", RequireStaff(), h.ListReviews)
		compliance.GET("/reviews/:id", RequireStaff(), h.GetReview)
		compliance.POST("/reviews/:id/decide", RequireStaff(), h.DecideReview)
	}

	subscriptions := api.Group("/subscriptions", auth)
	{
		subscriptions.GET("", h.GetSubscription)
		subscriptions.POST("", h.Subscribe)
		subscriptions.POST("/cancel", h.CancelSubscription)
	}

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadNotificationCount)
		notifications.POST("/:id/read", h.MarkNotificationRead)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
	}

	admin := api.Group("/admin", auth, RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/role", h.ChangeUserRole)
	}
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
