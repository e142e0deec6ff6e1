package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobboard-service/internal/config"
	"github.com/prperemyshlev/jobboard-service/internal/handler"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"github.com/prperemyshlev/jobboard-service/internal/service"
	"github.com/prperemyshlev/jobboard-service/internal/utils"
	"github.com/prperemyshlev/jobboard-service/pkg/linkedin"
	"github.com/prperemyshlev/jobboard-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra     Infrastructure
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	scheduler *service.JobAgentScheduler
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
	)

	publisher := service.NewRedisNotificationPublisher(infra.Redis().Client)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		repos.OAuthProvider,
		jwtManager,
		publisher,
		infra.Logger(),
		service.AuthConfig{
			BCryptCost:         cfg.Security.BCryptCost,
			RefreshTokenExpiry: cfg.JWT.RefreshTokenExpiry.Duration,
			MaxLoginAttempts:   cfg.Security.MaxLoginAttempts,
			LockoutDuration:    cfg.Security.LockoutDuration.Duration,
		},
	)

	recommendationService := service.NewRecommendationService(repos.Profile, repos.Job, infra.Logger())
	jobAgentService := service.NewJobAgentService(repos.JobAgent, repos.Profile, infra.Logger())
	scheduler := service.NewJobAgentScheduler(repos.JobAgent, publisher, cfg.Scheduler.PollInterval.Duration, infra.Logger())

	authHandler := handler.NewAuthHandler(authService)
	recommendationHandler := handler.NewRecommendationHandler(recommendationService)
	jobAgentHandler := handler.NewJobAgentHandler(jobAgentService)

	var oauthHandler *handler.OAuthHandler
	if cfg.LinkedIn.Enabled() {
		linkedinService := service.NewLinkedInAuthService(cfg.LinkedIn, linkedin.NewClient(), authService)
		oauthHandler = handler.NewOAuthHandler(linkedinService, infra.Logger())
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("jobboard-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, oauthHandler, recommendationHandler, jobAgentHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:     infra,
		config:    cfg,
		router:    router,
		server:    srv,
		scheduler: scheduler,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	recommendationHandler *handler.RecommendationHandler,
	jobAgentHandler *handler.JobAgentHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Register,
			)
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Login,
			)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", handler.AuthMiddleware(authService), authHandler.Logout)
			auth.POST("/logout-all", handler.AuthMiddleware(authService), authHandler.LogoutAll)
			auth.POST("/change-password", handler.AuthMiddleware(authService), authHandler.ChangePassword)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)

			if oauthHandler != nil {
				auth.GET("/linkedin", oauthHandler.LinkedInLogin)
				auth.GET("/linkedin/callback", oauthHandler.LinkedInCallback)
			}
		}

		api.GET("/recommendations", handler.AuthMiddleware(authService), recommendationHandler.Recommend)

		agent := api.Group("/job-agent")
		{
			agent.GET("", handler.AuthMiddleware(authService), jobAgentHandler.Get)
			agent.PUT("", handler.AuthMiddleware(authService), jobAgentHandler.Save)
			agent.GET("/unsubscribe", jobAgentHandler.Unsubscribe)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	// The scheduler shares the server's lifetime
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go a.scheduler.Run(schedulerCtx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	stopScheduler()

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
