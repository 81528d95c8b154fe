package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/checkout"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/config"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/db"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/handler"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/metrics"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/transport"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App)
	log.Info().Msg("Storefront starting...")
	log.Debug().
		Str("env", string(cfg.App.Environment)).
		Str("cart_store", string(cfg.Cart.Store)).
		Dur("submit_delay", cfg.Checkout.SubmitDelay).
		Msg("Configuration loaded")

	catalog, err := menu.LoadDefault()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load menu")
	}
	log.Info().Int("items", len(catalog.Items())).Msg("Menu loaded")

	loc, err := time.LoadLocation(cfg.Order.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Order.Timezone).Msg("Unknown order timezone")
	}

	ctx := context.Background()
	repo, closeStore, err := newCartRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("cart_store", string(cfg.Cart.Store)).Msg("Failed to open cart store")
	}
	defer closeStore()

	bus := notify.NewBus()
	m := metrics.New(prometheus.DefaultRegisterer)

	cartSvc := cart.NewService(catalog, repo, bus, m)
	tracker := checkout.NewTracker(cfg.Checkout.SuccessWindow, cfg.Checkout.FailureWindow, bus)
	checkoutSvc := checkout.NewService(
		catalog,
		cartSvc,
		tracker,
		checkout.NewComposer(cfg.Order, loc),
		checkout.LogOpener{},
		bus,
		m,
		cfg.Checkout.SubmitDelay,
	)
	searchHandler := handler.NewSearchHandler(catalog, cfg.Search.Debounce, bus)

	router := transport.NewRouter(
		prometheus.DefaultGatherer,
		handler.NewMenuHandler(catalog),
		handler.NewCartHandler(cartSvc),
		handler.NewCheckoutHandler(checkoutSvc),
		searchHandler,
		handler.NewEventsHandler(bus),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	// Event streams end when the bus closes; otherwise Shutdown would wait on them.
	searchHandler.Close()
	tracker.Close()
	bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Storefront stopped gracefully")
}

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.Environment.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "storefront").Logger()
}

// newCartRepository opens the configured cart store. The returned func releases its connections.
func newCartRepository(ctx context.Context, cfg *config.Config) (cart.Repository, func(), error) {
	switch cfg.Cart.Store {
	case config.StoreRedis:
		client, err := db.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		}
		return cart.NewRedisRepository(client, cfg.Cart.TTL), closeFn, nil

	case config.StorePostgres:
		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.ApplyMigrations(); err != nil {
			pg.Close()
			return nil, nil, err
		}
		sqlxDB := pg.SQLX()
		closeFn := func() {
			_ = sqlxDB.Close()
			pg.Close()
		}
		return cart.NewPostgresRepository(sqlxDB), closeFn, nil

	case config.StoreMemory:
		log.Warn().Msg("Using in-memory cart store, carts are lost on restart")
		return cart.NewMemoryRepository(cfg.Cart.TTL), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.Cart.Store)
	}
}
