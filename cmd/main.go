package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/speech_gateway/internal/audio"
	"github.com/Vovarama1992/speech_gateway/internal/config"
	"github.com/Vovarama1992/speech_gateway/internal/delivery"
	"github.com/Vovarama1992/speech_gateway/internal/domain"
	"github.com/Vovarama1992/speech_gateway/internal/error_notificator"
	"github.com/Vovarama1992/speech_gateway/internal/infra"
	"github.com/Vovarama1992/speech_gateway/internal/metrics"
	"github.com/Vovarama1992/speech_gateway/internal/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "speech_gateway"

func main() {
	configPath := flag.String("config", "config.yaml", "path to optional YAML config")
	flag.Parse()

	// =========================================================================
	// CONFIG / LOGGER
	// =========================================================================

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// METRICS
	// =========================================================================

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	synth, err := speech.NewSynthesizer(cfg)
	if err != nil {
		log.Fatalf("failed to init tts engine: %v", err)
	}

	transcriber, err := speech.NewTranscriber(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init stt engine: %v", err)
	}
	defer transcriber.Close()

	var archiver speech.Archiver
	if cfg.Storage.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archiver = domain.NewArchiveService(s3Client, "tts")
	}

	var errInfra error_notificator.Notificator = error_notificator.Nop{}
	if cfg.Notifier.Enabled() {
		tg, err := error_notificator.NewTelegramInfra(cfg.Notifier.BotToken, cfg.Notifier.AdminChatID)
		if err != nil {
			log.Fatalf("failed to init telegram notifier: %v", err)
		}
		errInfra = tg
	}
	errNotifier := error_notificator.NewService(errInfra, sugar)

	// =========================================================================
	// SERVICES
	// =========================================================================

	speechService := speech.NewService(
		synth,
		transcriber,
		audio.NewConcatenator(),
		archiver,
		errNotifier,
		m,
		sugar,
		speech.Options{
			Voice:       cfg.TTS.Voice,
			MaxWords:    cfg.TTS.MaxWords,
			MaxChars:    cfg.Limits.MaxTextChars,
			Concurrency: cfg.TTS.Concurrency,
			Attempts:    cfg.TTS.Attempts,
			CallTimeout: cfg.TTS.CallTimeoutDuration(),
			STTTimeout:  cfg.STT.CallTimeoutDuration(),
			TempDir:     cfg.TTS.TempDir,
		},
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Audio-URL"},
	}))

	speechHandler := delivery.NewSpeechHandler(
		speechService,
		zl,
		cfg.Limits.MaxUploadBytes,
		cfg.Limits.MaxTextChars,
	)

	delivery.RegisterRoutes(
		r,
		speechHandler,
		m,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		cfg.Limits.RequestsPerMinute,
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.HTTP.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + addr + " (tts=" + cfg.TTS.Engine + ", stt=" + cfg.STT.Engine + ")",
			Service: serviceName,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "graceful shutdown failed", Service: serviceName, Error: err})
		return
	}
	zl.Log(logger.LogEntry{Level: "info", Message: "server stopped", Service: serviceName})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
