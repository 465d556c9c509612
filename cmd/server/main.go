package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nityakart/delivery-shop/internal/config"
	"github.com/nityakart/delivery-shop/internal/db"
	"github.com/nityakart/delivery-shop/internal/es"
	"github.com/nityakart/delivery-shop/internal/handlers"
	"github.com/nityakart/delivery-shop/internal/logging"
	loggingmw "github.com/nityakart/delivery-shop/internal/middleware/logging"
	"github.com/nityakart/delivery-shop/internal/mykafka"
	httpserver "github.com/nityakart/delivery-shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)
	slog.SetDefault(logger)

	gdb, err := db.Open(configuration.DatabaseURL)
	if err != nil {
		log.Fatalf("database configuration error: %v", err)
	}

	// A failed init is logged and the listener starts anyway; requests fail
	// until connectivity comes back.
	if err := db.Init(context.Background(), gdb, logger); err != nil {
		logger.Error("database_init_failed", "error", err)
	}

	producer := mykafka.NewProducer(configuration.KafkaBrokers)
	if len(configuration.KafkaBrokers) == 0 {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var indexer *es.Indexer
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Error("es_connect_failed", "error", err)
		} else {
			indexer = &es.Indexer{Client: esClient, Index: "products"}
		}
	} else {
		logger.Info("es_disabled", "reason", "ES_URL not set")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		ProductHandler: &handlers.ProductHandler{DB: gdb, Producer: producer, ES: indexer},
		OrderHandler:   &handlers.OrderHandler{DB: gdb, Producer: producer},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	} else {
		logger.Error("db_handle_error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
