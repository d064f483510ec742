package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-recorder/internal/calls"
	"call-recorder/internal/config"
	"call-recorder/internal/enrichment"
	"call-recorder/internal/events"
	"call-recorder/internal/httpapi"
	"call-recorder/internal/notify"
	"call-recorder/internal/telephony"
	"call-recorder/internal/users"
	"call-recorder/pkg/logger"
	"call-recorder/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, "call-recorder-api")
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	callRepo := calls.NewPostgresRepo(db)
	userService := users.NewService(users.NewPostgresRepo(db))
	eventService := events.NewService(events.NewPostgresRepo(db))

	// Recording lookup only works with provider credentials; without them
	// the service still runs and relies on callback-provided URLs.
	var recordings calls.RecordingLookup
	if cfg.Twilio.AccountSID != "" {
		recordings = telephony.NewTwilioRecordings(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
	} else {
		log.Warn("twilio credentials not set, recording lookup disabled")
	}

	var summarizer enrichment.Summarizer
	if cfg.AI.APIKey != "" {
		summarizer = enrichment.NewOpenAISummarizer(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	} else {
		log.Warn("ai api key not set, enrichment falls back to derived text")
	}

	pipeline := enrichment.NewPipeline(callRepo, summarizer, log)
	dispatcher := enrichment.NewDispatcher(pipeline.Run, enrichment.DispatcherOptions{
		Workers:   cfg.Enrichment.Workers,
		QueueSize: cfg.Enrichment.QueueSize,
		Redis:     rdb,
		CapLimit:  cfg.Enrichment.MaxInflight,
	}, log)
	dispatcher.Start()

	var sender notify.Sender
	if cfg.Firebase.Credentials != "" {
		fcm, err := notify.NewFCMSender(rootCtx, cfg.Firebase.Credentials)
		if err != nil {
			log.Error("firebase init failed", "err", err)
			os.Exit(1)
		}
		sender = fcm
	} else {
		log.Warn("firebase credentials not set, push notifications disabled")
	}
	notifier := notify.NewRecordingNotifier(userService, sender, log)

	callService := calls.NewService(callRepo, recordings, dispatcher, notifier)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{
		Calls:                 callService,
		Users:                 userService,
		Events:                eventService,
		ServicePhone:          cfg.App.ServicePhoneNumber,
		RecordCompleteURL:     cfg.RecordCompleteURL,
		TranscribeCompleteURL: cfg.TranscribeCompleteURL,
	}, db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Let queued enrichment jobs land before the process exits.
	dispatcher.Stop()
	log.Info("shutdown complete")
}
