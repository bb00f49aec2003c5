package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"activity-service/internal/clients"
	"activity-service/internal/config"
	"activity-service/internal/db"
	"activity-service/internal/events"
	"activity-service/internal/feed"
	"activity-service/internal/handlers"
	"activity-service/internal/middleware"
	"activity-service/internal/observability"
	"activity-service/internal/repositories"
	"activity-service/internal/social"
	"activity-service/internal/unread"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "activity-service").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	trustClient := clients.NewTrustClient(cfg.TrustBaseURL, cache,
		time.Duration(cfg.TrustCacheTTLSeconds)*time.Second, log.Logger)
	profileClient := clients.NewProfileClient(cfg.ProfileBaseURL)

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, "activity-service", cfg.Environment, log.Logger)

	activityRepo := repositories.NewActivityRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	cursorRepo := repositories.NewCursorRepo(database)
	socialRepo := repositories.NewSocialRepo(database)

	gate := social.NewGate(socialRepo, log.Logger)
	feedService := feed.NewService(activityRepo, chatRepo, gate, trustClient, profileClient,
		cfg.FeedWorkers, log.Logger)
	unreadEngine := unread.NewEngine(chatRepo, messageRepo, cursorRepo,
		cfg.SystemUserID, cfg.UnreadFanoutSize, log.Logger)

	activityHandler := handlers.NewActivityHandler(activityRepo, emitter)
	feedHandler := handlers.NewFeedHandler(feedService)
	chatHandler := handlers.NewChatHandler(activityRepo, chatRepo, profileClient, gate)
	messageHandler := handlers.NewMessageHandler(chatRepo, messageRepo, profileClient, emitter)
	unreadHandler := handlers.NewUnreadHandler(unreadEngine, chatRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Auth(cfg.JWTSecret)

	router.POST("/activities", auth, activityHandler.Create)
	router.GET("/activities", auth, activityHandler.ListMine)
	router.PATCH("/activities/:activity_id", auth, activityHandler.Update)
	router.DELETE("/activities/:activity_id", auth, activityHandler.Delete)
	router.GET("/feed", auth, feedHandler.Get)

	router.POST("/activities/:activity_id/join", auth, chatHandler.Join)
	router.POST("/chats/direct", auth, chatHandler.StartDirect)
	router.POST("/chats/trip", auth, chatHandler.JoinTrip)
	router.POST("/chats/:chat_id/leave", auth, chatHandler.Leave)
	router.POST("/chats/:chat_id/rsvp", auth, chatHandler.Rsvp)

	router.GET("/chats/:chat_id/messages", auth, messageHandler.List)
	router.POST("/chats/:chat_id/messages", auth, messageHandler.Post)
	router.DELETE("/chats/:chat_id/messages/:message_id", auth, messageHandler.Delete)

	router.POST("/chats/:chat_id/read", auth, unreadHandler.MarkRead)
	router.GET("/chats/:chat_id/unread", auth, unreadHandler.ChatUnread)
	router.GET("/me/unread-total", auth, unreadHandler.TotalUnread)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
