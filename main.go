package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/locking"
	"github.com/developmentHC/conectaBemBack/internal/logging"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/otp"
	"github.com/developmentHC/conectaBemBack/internal/routes"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/store"
	"github.com/developmentHC/conectaBemBack/internal/views"
)

func main() {
	// a missing .env is fine when the environment is already populated
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	logging.Init(cfg.ServiceName, cfg.Environment)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := models.InitDB(models.DatabaseConfig{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		PingAttempts: 5,
		PingDelay:    2 * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("error obtaining database handle")
	}
	defer sqlDB.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	var rdb redis.UniversalClient
	locker := locking.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client, err := locking.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("error closing redis")
			}
		}()
		rdb = client
		locker = locking.NewRedisLocker(client, cfg.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis, slot locks are shared")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, slot locks are held in process")
	}

	appointmentStore := store.NewAppointmentStore(db)
	userStore := store.NewUserStore(db)
	manager := services.NewAppointmentManager(appointmentStore, locker)
	presenter := views.NewPresenter(userStore, cfg.AppURL, nil)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"Location", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Cfg:          cfg,
		DB:           db,
		Pinger:       sqlDB,
		Redis:        rdb,
		Appointments: manager,
		Presenter:    presenter,
		OTPSender:    otp.NewSender(cfg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
