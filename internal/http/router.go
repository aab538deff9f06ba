package http

import (
	"log/slog"

	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// AccountService covers both the auth and the user-management endpoints.
type AccountService interface {
	handlers.AuthService
	handlers.UserService
}

type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Accounts AccountService
	Sessions middlewares.SessionChecker
	OTP      handlers.OTPService
	Notes    handlers.NoteEngine

	// Readiness checks keyed by dependency name.
	Checks map[string]handlers.Check
	// Draining reports that shutdown has begun; readiness fails from then on.
	Draining func() bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" && d.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("notehub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(d.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	health := handlers.NewHealthHandler(d.Checks).WithDraining(d.Draining)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handlers.NewAuthHandler(d.Accounts, d.Sessions, handlers.CookieConfig{
		Secure: d.Config.CookieSecure,
	})
	usersHandler := handlers.NewUsersHandler(d.Accounts)
	otpHandler := handlers.NewOTPHandler(d.OTP)
	notesHandler := handlers.NewNotesHandler(d.Notes)

	loginLimiter := middlewares.NewRateLimiter(d.Config.LoginRateLimit, d.Config.RateWindow)
	otpSendLimiter := middlewares.NewRateLimiter(d.Config.OTPRateLimit, d.Config.RateWindow)
	otpVerifyLimiter := middlewares.NewRateLimiter(d.Config.OTPRateLimit, d.Config.RateWindow)
	apiLimiter := middlewares.NewRateLimiter(d.Config.APIRateLimit, d.Config.RateWindow)

	// public routes
	r.POST("/signup", authHandler.SignUp)
	r.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/session", authHandler.Session)

	r.POST("/otp/send", otpSendLimiter.RateLimiterMiddleware(middlewares.KeyByIP), otpHandler.Send)
	r.POST("/otp/verify", otpVerifyLimiter.RateLimiterMiddleware(middlewares.KeyByIP), otpHandler.Verify)

	r.POST("/users/availability", usersHandler.Availability)
	r.POST("/users/identity", usersHandler.Identity)
	r.PUT("/password/reset", usersHandler.ResetPassword)

	// session routes
	authed := r.Group("/")
	authed.Use(
		middlewares.NewAuthMiddleware(d.Sessions).RequireSession(),
		apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
	)

	authed.POST("/notes", notesHandler.CreateNote)
	authed.GET("/notes/:user_id", notesHandler.ListNotes)
	authed.GET("/notes/:user_id/search", notesHandler.SearchNotes)
	authed.GET("/notes/:user_id/sort", notesHandler.SortNotes)
	authed.PUT("/notes/:user_id/:note_id", notesHandler.UpdateNote)
	authed.DELETE("/notes/:user_id/:note_id", notesHandler.DeleteNote)

	authed.GET("/users/:user_id", usersHandler.Profile)
	authed.PUT("/users/:user_id/username", usersHandler.UpdateUsername)
	authed.PUT("/users/:user_id/password", usersHandler.ChangePassword)

	return r
}
