package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	handlerHttp "github.com/mikiasgoitom/PromptShelf/internal/handler/http"
	redisclient "github.com/mikiasgoitom/PromptShelf/internal/infrastructure/cache"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/config"
	database "github.com/mikiasgoitom/PromptShelf/internal/infrastructure/database"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/events"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/logger"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/metrics"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/repository/memory"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/repository/mongodb"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/store"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/uuidgen"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/validator"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// repositories groups the three stores the use cases need.
type repositories struct {
	users     contract.IUserRepository
	prompts   contract.IPromptRepository
	reactions contract.IReactionRepository
	close     func()
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	appConfig := config.NewConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	zapLogger, err := logger.New(appConfig.GetAppEnv())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	appLogger := logger.NewZapLogger(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uuidGenerator := uuidgen.NewGenerator()
	repos, err := openRepositories(ctx, appConfig, uuidGenerator, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to open %s store: %v", appConfig.GetStoreDriver(), err)
	}
	defer repos.close()

	// Dependency Injection: Usecases
	reactionUsecase := usecase.NewReactionUsecase(repos.reactions, repos.prompts, repos.users, appLogger, appConfig.GetReactedListLimit())
	reactionUsecase.SetMetrics(metrics.NewReactions(nil))
	promptUsecase := usecase.NewPromptUsecase(repos.prompts, repos.users, appLogger)
	userUsecase := usecase.NewUserUsecase(repos.users, appLogger, validator.NewValidator())

	// Optional Dependency Injection: Redis cache and cross-replica live updates
	if redisURL := appConfig.GetRedisURL(); redisURL != "" {
		rdb, err := redisclient.NewRedisFromURL(ctx, redisURL)
		if err != nil {
			appLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisclient.Close(rdb)
		countsCache := store.NewCountsCacheStore(rdb, appConfig.GetCountsCacheTTL())
		reactionUsecase.SetCountsCache(countsCache)
		promptUsecase.SetCountsCache(countsCache)
		reactionUsecase.SetEventBus(events.NewRedisBus(rdb, appLogger))
		appLogger.Infof("Redis enabled: counts cache and live updates shared across replicas")
	} else {
		reactionUsecase.SetEventBus(events.NewHub())
		appLogger.Infof("Redis not configured: live updates are local to this process")
	}

	jwtManager := jwt.NewJWTManager(appConfig.GetJWTSecret(), appConfig.GetJWTIssuer(), time.Hour)
	jwtService := jwt.NewJWTService(jwtManager)

	// Register custom validators
	validator.RegisterCustomValidators()

	if appConfig.GetAppEnv() == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup API routes
	appRouter := handlerHttp.NewRouter(reactionUsecase, promptUsecase, userUsecase, jwtService, appLogger, zapLogger.Named("http"), appConfig)
	appRouter.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + appConfig.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Infof("Server running on port %s", appConfig.GetPort())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Graceful shutdown failed: %v", err)
	}
}

func openRepositories(ctx context.Context, cfg usecasecontract.IConfigProvider, idGen contract.IUUIDGenerator, appLogger usecasecontract.IAppLogger) (*repositories, error) {
	switch cfg.GetStoreDriver() {
	case "memory":
		st := memory.NewStore(idGen)
		if path := cfg.GetMemorySeedFile(); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			if err := st.LoadSeed(ctx, f); err != nil {
				return nil, fmt.Errorf("load seed file: %w", err)
			}
			appLogger.Infof("Loaded memory store seed from %s", path)
		}
		return &repositories{users: st, prompts: st, reactions: st, close: func() {}}, nil

	case "mongo":
		mongoClient, err := database.NewMongoDBClient(cfg.GetMongoURI())
		if err != nil {
			return nil, err
		}
		db := mongoClient.Client.Database(cfg.GetMongoDBName())
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = mongoClient.Disconnect()
			return nil, err
		}
		reactionRepo := mongodb.NewReactionRepository(mongoClient.Client, db, idGen)
		return &repositories{
			users:     mongodb.NewMongoUserRepository(db.Collection("users"), idGen),
			prompts:   mongodb.NewPromptRepository(mongoClient.Client, db, reactionRepo),
			reactions: reactionRepo,
			close: func() {
				if err := mongoClient.Disconnect(); err != nil {
					appLogger.Warnf("Failed to disconnect from MongoDB: %v", err)
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.GetStoreDriver())
}
