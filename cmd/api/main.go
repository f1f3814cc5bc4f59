package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-notes/docs"
	"github.com/johnquangdev/meeting-notes/internal/adapter/handler"
	"github.com/johnquangdev/meeting-notes/internal/adapter/repository"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-notes/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/vectorstore"
	aiuse "github.com/johnquangdev/meeting-notes/internal/usecase/ai"
	"github.com/johnquangdev/meeting-notes/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-notes/internal/usecase/user"
	pkgai "github.com/johnquangdev/meeting-notes/pkg/ai"
	"github.com/johnquangdev/meeting-notes/pkg/config"
	"github.com/johnquangdev/meeting-notes/pkg/jwt"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
	pkgvalidator "github.com/johnquangdev/meeting-notes/pkg/validator"
)

// @title           Meeting Notes API
// @version         1.0
// @description     Summarizes meeting transcripts, extracts action items and searches past meetings by similarity

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.UsesInsecureJWTSecret() {
		log.Println("⚠️  JWT_SECRET is not set, tokens are signed with the placeholder secret")
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Production deployments manage schema with cmd/migrate.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run cmd/migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db, cfg.Database.MigrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; run cmd/migrate to update the schema")
	}

	// Initialize MongoDB
	log.Println("📦 Connecting to MongoDB...")
	mongoClient, err := database.ConnectMongo(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.DisconnectMongo(mongoClient, cfg.MongoDB.Timeout)

	vectorStore := vectorstore.NewMongoStore(
		mongoClient.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection),
		cfg.MongoDB.VectorIndex,
	)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	if err := vectorStore.EnsureIndexes(indexCtx); err != nil {
		log.Printf("⚠️  Failed to ensure vector collection indexes: %v", err)
	}
	cancelIndex()

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Initialize transcript archive
	var archive meeting.Archiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Initializing transcript archive...")
		ta, err := storage.NewTranscriptArchive(context.Background(), &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize transcript archive: %v", err)
		}
		archive = ta
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterCollectors(registry)

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	jobRepo := repository.NewEmbeddingJobRepository(db)

	// Initialize AI components
	log.Println("🤖 Initializing AI components...")
	gemini := pkgai.NewGeminiClient(&cfg.Gemini)
	summarizer := aiuse.NewSummarizer(gemini, logger)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize services
	userService := user.NewService(userRepo, jwtManager, logger)
	meetingService := meeting.NewService(meetingRepo, vectorStore, jobRepo, summarizer, archive, logger)

	// Start embedding reconciler
	var reconciler *meeting.Reconciler
	if cfg.Reconcile.Enabled {
		log.Println("♻️  Starting embedding reconciler...")
		reconciler = meeting.NewReconciler(meetingRepo, vectorStore, jobRepo, summarizer, meeting.ReconcilerConfig{
			Interval:        cfg.Reconcile.Interval,
			SweepInterval:   cfg.Reconcile.SweepInterval,
			SweepWindow:     cfg.Reconcile.SweepWindow,
			BatchSize:       cfg.Reconcile.BatchSize,
			JobTimeout:      cfg.Reconcile.JobTimeout,
			RetryMaxElapsed: cfg.Reconcile.RetryMaxElapsed,
		}, logger.Named("reconciler"))
		if err := reconciler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reconciler: %v", err)
		}
	}

	// Rate limiting
	var rateLimitMW echo.MiddlewareFunc
	var rateLimiter *httpmw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = httpmw.NewRateLimiter(redisClient, httpmw.RateLimitConfig{
			RPS:    cfg.RateLimit.RPS,
			Burst:  cfg.RateLimit.Burst,
			Window: cfg.RateLimit.Window,
		}, logger)
		rateLimitMW = rateLimiter.Middleware()
	}

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		handler.NewUserHandler(userService, logger),
		handler.NewMeetingHandler(meetingService, logger),
		httpmw.EchoAuth(jwtManager),
		rateLimitMW,
		registry,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	if reconciler != nil {
		if err := reconciler.Stop(); err != nil {
			log.Printf("⚠️  Failed to stop reconciler: %v", err)
		}
	}
	if rateLimiter != nil {
		rateLimiter.Close()
	}

	log.Println("✅ Server stopped gracefully")
}

// newLogger builds a JSON logger in production and a console one otherwise
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
