package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/handler"
	"github.com/iliyamo/crimson-storefront/internal/logging"
	"github.com/iliyamo/crimson-storefront/internal/queue"
	"github.com/iliyamo/crimson-storefront/internal/repository"
	"github.com/iliyamo/crimson-storefront/internal/router"
	"github.com/iliyamo/crimson-storefront/internal/service"
	"github.com/iliyamo/crimson-storefront/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	products := repository.NewProductRepo(db)
	users := repository.NewUserRepo(db)
	orders := repository.NewOrderRepo(db)
	events := repository.NewSaleEventRepo(db)

	// The API starts even when the store is down; /api/health reports it
	// and every query answers 503 until it comes back.
	hash := func(s string) (string, error) { return utils.HashPassword(s, cfg.BcryptCost) }
	prepare := func() error {
		if err := db.PingWithin(ctx, 5*time.Second); err != nil {
			return err
		}
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		return repository.Seed(ctx, products, users, events, hash, time.Now())
	}
	if err := prepare(); err != nil {
		log.Error().Err(err).Str("driver", db.Driver).Msg("database not ready, starting offline")
		go func() {
			t := time.NewTicker(10 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if err := prepare(); err != nil {
						log.Debug().Err(err).Msg("database still not ready")
						continue
					}
					log.Info().Msg("database ready")
					return
				}
			}
		}()
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn().Msg("redis unavailable: response cache off, rate limit in-process")
	} else {
		defer rdb.Close()
	}

	pub := service.NewPublisher(cfg.Broker, log)
	defer pub.Close()

	if cfg.Broker.Kind == config.BrokerRabbitMQ && cfg.Broker.ConsumerEnabled {
		consumer := &queue.Consumer{
			URL:     cfg.Broker.RabbitURL,
			Queue:   cfg.Broker.Topic,
			LogPath: cfg.Broker.LogPath,
			Log:     log,
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("order consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	userHandler := handler.NewUserHandler(users, log)
	userHandler.SelfOnly = cfg.AdminAuth

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAPI(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users, log),
		Products:   handler.NewProductHandler(products, log),
		Users:      userHandler,
		Orders:     handler.NewOrderHandler(orders, pub, log),
		SaleEvents: handler.NewSaleEventHandler(events, log),
	}, router.Deps{
		Cfg:       cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Log:       log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("broker", cfg.Broker.Kind).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}
