package httpgin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/auth"
	"github.com/kirinyoku/matchday/internal/domain"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service"
	"github.com/kirinyoku/matchday/internal/service/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators of the router. Idem and Limiter are optional.
type Deps struct {
	Services    *service.Services
	Issuer      *auth.Issuer
	Idem        *redisrepo.IdempotencyStore
	IdemLockTTL time.Duration
	Limiter     RateLimiter
	Logger      *slog.Logger
}

func NewRouter(d Deps, middlewares ...gin.HandlerFunc) *gin.Engine {
	if d.IdemLockTTL <= 0 {
		d.IdemLockTTL = 30 * time.Second
	}

	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(d.Logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/auth/register", handleRegister(d))
	r.POST("/auth/login", handleLogin(d))
	r.GET("/fixtures", handleListFixtures(d))
	r.GET("/fixtures/upcoming", handleListUpcomingFixtures(d))

	// Audience API
	audience := r.Group("", Authenticate(d.Issuer), RequireRole(domain.RoleAudience))
	{
		audience.POST("/orders", RateLimit(d.Limiter, d.Logger), handleCreateOrder(d))
		audience.GET("/me/orders", handleListMyOrders(d))
		audience.GET("/me/payments", handleListMyPayments(d))
		audience.POST("/me/orders/:id/cancel", handleCancelMyOrder(d))
		audience.GET("/me/orders/:id/eticket", handleETicket(d))
	}

	// Admin API
	admin := r.Group("/admin", Authenticate(d.Issuer), RequireRole(domain.RoleAdmin))
	{
		admin.GET("/teams", handleListTeams(d))
		admin.POST("/teams", handleCreateTeam(d))
		admin.PUT("/teams/:id", handleUpdateTeam(d))

		admin.GET("/stadiums", handleListStadiums(d))
		admin.GET("/stadiums/:id", handleGetStadium(d))
		admin.POST("/stadiums", handleCreateStadium(d))
		admin.PUT("/stadiums/:id", handleUpdateStadium(d))
		admin.POST("/stadiums/:id/zones", handleCreateZone(d))
		admin.PUT("/zones/:id", handleUpdateZone(d))

		admin.POST("/fixtures", handleCreateFixture(d))
		admin.PUT("/fixtures/:id", handleUpdateFixture(d))
		admin.POST("/fixtures/check", handleCheckFixture(d))
		admin.POST("/fixtures/:id/cancel", handleCancelFixture(d))

		admin.GET("/orders", handleListOrders(d))
		admin.POST("/orders/:id/cancel", handleCancelOrder(d))
	}

	return r
}

// @Summary  Register an audience account
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} AuthResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /auth/register [post]
func handleRegister(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		u, err := d.Services.Users.Register(c.Request.Context(), users.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		respondToken(c, d, http.StatusCreated, u)
	}
}

// @Summary  Log in as audience or admin
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/login [post]
func handleLogin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		role := req.Role
		if role == "" {
			role = domain.RoleAudience
		}
		if role != domain.RoleAudience && role != domain.RoleAdmin {
			badRequest(c, "invalid role")
			return
		}

		u, err := d.Services.Users.Login(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		respondToken(c, d, http.StatusOK, u)
	}
}

func respondToken(c *gin.Context, d Deps, status int, u *domain.User) {
	token, err := d.Issuer.Issue(u)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(status, AuthResponse{Token: token, User: u})
}

// @Summary  List all fixtures
// @Success  200 {array} domain.FixtureView
// @Router   /fixtures [get]
func handleListFixtures(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := d.Services.Query.ListFixtures(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, views, "public, max-age=15")
	}
}

// @Summary  List upcoming confirmed fixtures with seats sold per zone
// @Success  200 {array} domain.FixtureView
// @Router   /fixtures/upcoming [get]
func handleListUpcomingFixtures(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := d.Services.Query.ListUpcomingFixtures(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, views, "public, max-age=15")
	}
}

// --- Helpers ---

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
