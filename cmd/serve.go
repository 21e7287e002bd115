package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/controller"
	usersgrpc "github.com/vibast-solutions/ms-go-users/app/grpc"
	"github.com/vibast-solutions/ms-go-users/app/metrics"
	"github.com/vibast-solutions/ms-go-users/app/middleware"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/storage"
	"github.com/vibast-solutions/ms-go-users/app/token"
	"github.com/vibast-solutions/ms-go-users/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the user account service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type services struct {
	sessions service.SessionService
	accounts service.AccountService
	profiles service.ProfileService
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure media storage")
	}

	userRepo := repository.NewUserRepository(db, repository.NewBcryptHasher(cfg.Password.BcryptCost))
	profileRepo := repository.NewProfileRepository(db)
	tokens := token.NewService(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		AccessTTL:     cfg.JWT.AccessTokenTTL,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshTokenTTL,
	})

	svc := services{
		sessions: service.NewSessionService(userRepo, tokens, cfg),
		accounts: service.NewAccountService(userRepo, uploader, cfg),
		profiles: service.NewProfileService(profileRepo),
	}

	reg := metrics.NewRegistry()
	metrics.RegisterDBStats(reg, db)

	grpcServer := startGRPCServer(cfg, svc)
	e := newHTTPServer(cfg, db, svc, reg)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
}

func newHTTPServer(cfg *config.Config, db *sql.DB, svc services, reg *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(metrics.NewHTTPMetrics(reg).Middleware())

	health := controller.NewHealthController(db)
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))

	users := controller.NewUserController(svc.sessions, svc.accounts, cfg)
	profiles := controller.NewProfileController(svc.profiles)
	authMiddleware := middleware.NewAuthMiddleware(svc.sessions)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	bodyLimit := echomiddleware.BodyLimit(uploadBodyLimit(cfg.Upload.MaxBytes))

	api := e.Group("/api/v1/users")
	api.POST("/register", users.Register, limiter, bodyLimit)
	api.POST("/login", users.Login, limiter)
	api.POST("/refresh-token", users.RefreshToken, limiter)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth)
	protected.POST("/logout", users.Logout)
	protected.POST("/change-password", users.ChangePassword)
	protected.GET("/current-user", users.CurrentUser)
	protected.PATCH("/update-account", users.UpdateAccount)
	protected.PATCH("/avatar", users.UpdateAvatar, bodyLimit)
	protected.PATCH("/cover-image", users.UpdateCoverImage, bodyLimit)
	protected.GET("/channel/:username", profiles.ChannelProfile)
	protected.GET("/history", profiles.WatchHistory)

	return e
}

// uploadBodyLimit leaves room for two files plus form fields.
func uploadBodyLimit(maxFileBytes int64) string {
	if maxFileBytes <= 0 {
		return "32M"
	}
	return strconv.FormatInt(2*maxFileBytes+64*1024, 10)
}

func startGRPCServer(cfg *config.Config, svc services) *grpc.Server {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(usersgrpc.AuthUnaryInterceptor(svc.sessions)),
	)
	usersgrpc.RegisterUserServiceServer(grpcServer, usersgrpc.NewUserServer(svc.sessions, svc.accounts, svc.profiles))

	go func() {
		logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
		if err := grpcServer.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("Failed to start gRPC server")
		}
	}()
	return grpcServer
}
