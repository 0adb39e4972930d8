package http

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/middleware"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	reactionHandler *ReactionHandler
	liveHandler     *LiveHandler
	promptHandler   *PromptHandler
	userHandler     *UserHandler
	jwtService      usecase.JWTService
	config          usecasecontract.IConfigProvider
	requestLogger   *zap.Logger
}

func NewRouter(reactionUsecase usecasecontract.IReactionUseCase, promptUsecase usecasecontract.IPromptUseCase, userUsecase usecasecontract.IUserUseCase, jwtService usecase.JWTService, logger usecasecontract.IAppLogger, requestLogger *zap.Logger, config usecasecontract.IConfigProvider) *Router {
	if requestLogger == nil {
		requestLogger = zap.NewNop()
	}
	return &Router{
		reactionHandler: NewReactionHandler(reactionUsecase),
		liveHandler:     NewLiveHandler(reactionUsecase, logger, config.GetLivePingInterval(), config.GetCORSAllowedOrigins()),
		promptHandler:   NewPromptHandler(promptUsecase),
		userHandler:     NewUserHandler(userUsecase),
		jwtService:      jwtService,
		config:          config,
		requestLogger:   requestLogger,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	origins := r.config.GetCORSAllowedOrigins()
	allowAll := len(origins) == 1 && origins[0] == "*"
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowAll,
		MaxAge:           12 * time.Hour,
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestLogger(r.requestLogger))

	// rate limiter configuration
	lmt := tollbooth.NewLimiter(r.config.GetRateLimitPerSecond(), &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessage("Too many requests, please try again later.")

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimiter(lmt))

	// Public routes; a token, when present, personalizes the answer
	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(r.jwtService))
	{
		public.GET("/prompts/:promptID/reactions", r.reactionHandler.GetReactions)
		public.GET("/prompts/:promptID/reactions/:kind", r.reactionHandler.GetReactionState)
		public.GET("/prompts/:promptID/reactions/:kind/live", r.liveHandler.Stream)
	}

	// Protected routes (authentication required)
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleWare(r.jwtService))
	{
		protected.POST("/me/sync", r.userHandler.SyncCurrentUser)
		protected.GET("/me", r.userHandler.GetCurrentUser)
		protected.GET("/me/likes", r.reactionHandler.ListLiked)
		protected.GET("/me/bookmarks", r.reactionHandler.ListBookmarked)

		protected.POST("/prompts/:promptID/like", r.reactionHandler.ToggleLike)
		protected.POST("/prompts/:promptID/bookmark", r.reactionHandler.ToggleBookmark)
		protected.POST("/prompts/:promptID/reactions/:kind/toggle", r.reactionHandler.ToggleReaction)
		protected.DELETE("/prompts/:promptID", r.promptHandler.DeletePrompt)
	}
}
