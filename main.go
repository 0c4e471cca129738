package main

import (
	"context"
	"expvar"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gitping/internal"
	"gitping/pkg/api"
	"gitping/pkg/storage/events"
	"gitping/webhook"
)

func main() {
	logger := internal.NewLogger("server")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	config, err := internal.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	store, err := events.Open(events.Config{
		Driver:      config.Storage.Driver,
		DSN:         config.Storage.DSN,
		Dialect:     config.Storage.Dialect,
		Table:       config.Storage.Table,
		AutoMigrate: config.Storage.AutoMigrate,
	})
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ruleEngine, err := internal.NewRuleEngine(internal.RulesConfig{
		Rules:  config.Rules,
		Logger: internal.NewLogger("rules"),
	})
	if err != nil {
		logger.Fatalf("compile rules: %v", err)
	}

	publisher, err := internal.NewPublisher(config.Fanout)
	if err != nil {
		logger.Fatalf("publisher: %v", err)
	}
	defer publisher.Close()

	ghHandler, err := webhook.NewGitHubHandler(
		config.Webhook.Secret,
		store,
		ruleEngine,
		publisher,
		internal.NewLogger("webhook"),
		config.Server.MaxBodyBytes,
	)
	if err != nil {
		logger.Fatalf("github handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle(config.Webhook.Path, ghHandler)
	mux.Handle(config.Webhook.Path+"/test", &webhook.TestHandler{
		Store:  store,
		Logger: internal.NewLogger("webhook"),
	})
	logger.Printf("github webhook enabled on %s", config.Webhook.Path)

	eventsHandler := &api.EventsHandler{
		Store:        store,
		Logger:       internal.NewLogger("api"),
		DefaultLimit: config.API.DefaultLimit,
		MaxLimit:     config.API.MaxLimit,
	}
	mux.Handle("/events", eventsHandler)
	mux.Handle("/events/", eventsHandler)
	mux.Handle("/health", api.HealthHandler{Service: "gitping"})

	if config.Server.MetricsEnabled {
		mux.Handle(config.Server.MetricsPath, expvar.Handler())
		logger.Printf("metrics enabled on %s", config.Server.MetricsPath)
	}

	handler := internal.NewRateLimitHandler(mux, config.Server.RateLimitRPS, config.Server.RateLimitBurst, time.Hour)

	addr := ":" + strconv.Itoa(config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(config.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout:      time.Duration(config.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:       time.Duration(config.Server.IdleTimeoutMS) * time.Millisecond,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderMS) * time.Millisecond,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
