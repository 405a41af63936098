package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/commonfund/treasury-api/internal/api/handler"
	"github.com/commonfund/treasury-api/internal/api/middleware"
	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// Deps carries everything the router needs. Construction of services and
// repositories happens in main; the router only wires routes.
type Deps struct {
	Treasury  ports.TreasuryService
	Auth      ports.AuthService
	Actions   ports.ActionRepository
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("treasury_http"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	treasuryHandler := handler.NewTreasuryHandler(deps.Treasury)
	proposalHandler := handler.NewProposalHandler(deps.Treasury)
	actionHandler := handler.NewActionHandler(deps.Actions)

	authed := middleware.Auth(deps.JWTSecret)
	collaborator := middleware.RequireRole(deps.Treasury, domain.RoleCollaborator)
	stakeholder := middleware.RequireRole(deps.Treasury, domain.RoleStakeholder)
	member := middleware.RequireRole(deps.Treasury, domain.RoleCollaborator, domain.RoleStakeholder)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Treasury routes ---
	v1 := e.Group("/v1", authed)
	v1.POST("/treasury/contributions", treasuryHandler.Contribute)
	v1.GET("/treasury/balance", treasuryHandler.Balance)
	v1.GET("/treasury/deployer", treasuryHandler.Deployer)

	// --- Proposal routes ---
	// Role gates here are a transport fast path; the service enforces the
	// same gates authoritatively under its own lock.
	v1.POST("/proposals", proposalHandler.Create, stakeholder)
	v1.GET("/proposals", proposalHandler.List)
	v1.GET("/proposals/:id", proposalHandler.Get)
	v1.GET("/proposals/:id/votes", proposalHandler.Votes)
	v1.POST("/proposals/:id/votes", proposalHandler.Vote, stakeholder)
	v1.POST("/proposals/:id/payout", proposalHandler.Payout, stakeholder)

	// --- Member self views ---
	v1.GET("/members/me/votes", treasuryHandler.MyVotes, stakeholder)
	v1.GET("/members/me/stake", treasuryHandler.MyStake, stakeholder)
	v1.GET("/members/me/contribution", treasuryHandler.MyContribution, collaborator)
	v1.GET("/members/me/status", treasuryHandler.MyStatus)

	// --- Governance log ---
	v1.GET("/actions", actionHandler.List, member)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
