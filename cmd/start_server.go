package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	authhttp "github.com/mambasports/team-service/internal/auth/handler/http"
	"github.com/mambasports/team-service/internal/auth/repository"
	"github.com/mambasports/team-service/internal/auth/service"
	"github.com/mambasports/team-service/internal/blog"
	"github.com/mambasports/team-service/internal/configs"
	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/internal/middleware"
	"github.com/mambasports/team-service/internal/product"
	"github.com/mambasports/team-service/internal/team"
	"github.com/mambasports/team-service/internal/upload"
	"github.com/mambasports/team-service/internal/users"
	"github.com/mambasports/team-service/internal/video"
	"github.com/mambasports/team-service/internal/worker"
	"github.com/mambasports/team-service/pkg/jwt"
	app_logger "github.com/mambasports/team-service/pkg/logger"
	"github.com/mambasports/team-service/pkg/mail"
	"github.com/mambasports/team-service/pkg/metrics"
	"go.uber.org/zap"
)

// bodyLimit leaves room for the largest upload (100 MB video) plus form fields.
const bodyLimit = 110 << 20

func InitConfig() (*configs.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return configs.Load(os.Getenv("APP_ENV"))
}

func InitLogger(cfg *configs.Config) (*zap.Logger, error) {
	return app_logger.New(cfg.Log.Level, cfg.Log.Dev)
}

func SetupDatabase(ctx context.Context, cfg *configs.Config, log *zap.Logger) (*database.Database, *database.RedisCache, error) {
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	redisCache, err := database.InitRedis(ctxWithTimeout, cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, redisCache, nil
}

// Dependencies are the external resources the server is built on.
type Dependencies struct {
	Config *configs.Config
	Log    *zap.Logger
	DB     *database.Database
	Redis  *database.RedisCache
	Mailer mail.Mailer
}

type Server struct {
	App  *fiber.App
	Auth *service.AuthService

	cfg      *configs.Config
	log      *zap.Logger
	consumer *worker.MailConsumer
}

// NewServer wires repositories, services and routes. In outbox mode the
// mail consumer is created but only runs once StartWorkers is called.
func NewServer(deps Dependencies) (*Server, error) {
	cfg, log := deps.Config, deps.Log

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		return nil, fmt.Errorf("jwt manager: %w", err)
	}
	storage, err := upload.NewStorage(cfg.App.UploadsRoot)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(deps.DB)
	ledger := database.NewOTPLedger(deps.Redis, cfg.Auth.OTPTTL)
	blacklist := database.NewTokenBlacklist(deps.Redis)

	s := &Server{cfg: cfg, log: log}

	var dispatcher service.MailDispatcher
	if cfg.Mail.Delivery == configs.MailDeliveryOutbox {
		outbox := database.NewMailOutbox(deps.Redis)
		s.consumer = worker.NewMailConsumer(outbox, ledger, deps.Mailer, cfg, log)
		dispatcher = outbox
	} else {
		dispatcher = service.NewDirectDispatcher(deps.Mailer, cfg.Auth.OTPTTL)
	}

	s.Auth = service.NewAuthService(userRepo, ledger, blacklist, dispatcher, tokens, cfg, log.Named("auth"))

	blogService := blog.NewService(blog.NewRepository(deps.DB), database.NewBlogEngagement(deps.DB), log.Named("blog"))
	videoService := video.NewService(video.NewRepository(deps.DB), database.NewVideoEngagement(deps.DB), log.Named("video"))
	productService := product.NewService(product.NewRepository(deps.DB), log.Named("product"))
	teamService := team.NewService(team.NewRepository(deps.DB), userRepo, log.Named("team"))
	userService := users.NewService(userRepo, log.Named("users"))

	app := fiber.New(fiber.Config{
		AppName:      "Mamba Team Service",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(log.Named("http")))

	ping := func(c *fiber.Ctx) bool {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		return deps.DB.HealthCheck(ctx) == nil && deps.Redis.Ping(ctx) == nil
	}
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe:     ping,
		LivenessEndpoint:  "/health",
		ReadinessProbe:    ping,
		ReadinessEndpoint: "/ready",
	}))
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	guard := middleware.AuthGuard(s.Auth)
	limiter := middleware.NewIPRateLimiter(cfg.Auth.RateLimitPerSecond, cfg.Auth.RateLimitBurst)

	api := app.Group("/api")
	authhttp.NewAuthHandler(s.Auth, storage, log.Named("auth")).RegisterRoutes(api, guard, limiter.Handler())
	blog.NewHandler(blogService, storage, log).RegisterRoutes(api, guard)
	video.NewHandler(videoService, storage, log).RegisterRoutes(api, guard)
	product.NewHandler(productService).RegisterRoutes(api, guard)
	team.NewHandler(teamService, storage, log).RegisterRoutes(api, guard)
	users.NewHandler(userService, storage, log).RegisterRoutes(api, guard)

	s.App = app
	return s, nil
}

// StartWorkers runs background consumers until ctx is cancelled.
func (s *Server) StartWorkers(ctx context.Context) {
	if s.consumer == nil {
		return
	}
	s.log.Info("starting mail outbox consumer")
	go s.consumer.Start(ctx)
}

func (s *Server) Describe() string {
	return strings.Join([]string{
		"env=" + s.cfg.App.Env,
		"db=" + s.cfg.DB.Driver,
		"mail=" + s.cfg.Mail.Provider + "/" + s.cfg.Mail.Delivery,
	}, " ")
}
