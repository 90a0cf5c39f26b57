package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"talk2order/config"
	"talk2order/internal/application"
	"talk2order/internal/infra/audio"
	"talk2order/internal/infra/display"
	"talk2order/internal/infra/openai"
	"talk2order/internal/infra/pushover"
	"talk2order/internal/observe"
)

var version = "dev"

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("kiosk error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownMetrics(sctx); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return err
	}

	catalog, err := config.LoadMenu(cfg.MenuFile)
	if err != nil {
		return err
	}

	source := createAudioSource(cfg.Audio, logger)
	if err := source.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := source.Stop(); err != nil {
			logger.Warn("stopping audio source", "error", err)
		}
	}()

	screen, hub := createDisplay(cfg.Display, logger)
	speaker := createSpeaker(cfg, logger)

	listener := application.NewVoiceListener(
		source,
		createSTT(cfg.OpenAI),
		speaker,
		screen,
		cfg.Kiosk.ListenTimeoutDuration(),
		metrics,
		logger,
	)

	kiosk := application.NewKiosk(
		catalog,
		listener,
		speaker,
		screen,
		createNotifier(cfg.Pushover),
		metrics,
		logger,
		application.Options{
			IncludeDiningChoice: cfg.Kiosk.IncludeDiningChoice,
			RepeatSessions:      cfg.Kiosk.RepeatSessions,
			MaxAttempts:         cfg.Kiosk.MaxAttempts,
		},
	)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		serve(gctx, g, &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}, logger)
	}
	if hub != nil {
		defer hub.Close()
		serve(gctx, g, &http.Server{Addr: cfg.Display.Addr, Handler: hub.Routes()}, logger)
	}

	g.Go(func() error {
		// A single session ends the process once the order is placed.
		defer cancel()
		return kiosk.Run(gctx)
	})

	logger.Info("starting talk2order kiosk",
		"version", version,
		"audio_source", source.Name(),
		"display", cfg.Display.Mode,
		"dining_choice", cfg.Kiosk.IncludeDiningChoice,
	)

	err = g.Wait()
	switch {
	case errors.Is(err, application.ErrSourceClosed):
		logger.Info("audio source exhausted")
	case err != nil && !errors.Is(err, context.Canceled):
		return err
	}
	logger.Info("shutting down")
	return nil
}

func serve(ctx context.Context, g *errgroup.Group, srv *http.Server, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "microphone":
		format := application.DefaultAudioFormat()
		format.SampleRate = cfg.SampleRate
		return audio.NewMicrophoneSource(format, logger)
	case "console":
		return audio.NewConsoleSource(os.Stdin)
	default:
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

func createSTT(cfg config.OpenAIConfig) application.SpeechToText {
	if cfg.APIKey == "" {
		return &application.NoopSTT{}
	}
	return openai.NewTranscriptionClient(cfg.APIKey, cfg.STTModel, cfg.Language, openaiOptions(cfg)...)
}

func createSpeaker(cfg *config.Config, logger *slog.Logger) application.Speaker {
	if !cfg.Speech.Enabled {
		return &application.NoopSpeaker{}
	}
	synth := openai.NewSpeechClient(cfg.OpenAI.APIKey, cfg.OpenAI.TTSModel, cfg.OpenAI.Voice, openaiOptions(cfg.OpenAI)...)
	logger.Debug("speech output enabled", "model", cfg.OpenAI.TTSModel, "voice", cfg.OpenAI.Voice)
	return audio.NewSpeaker(synth, audio.NewDevicePlayer())
}

func openaiOptions(cfg config.OpenAIConfig) []openai.Option {
	opts := []openai.Option{openai.WithTimeout(cfg.TimeoutDuration())}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

func createDisplay(cfg config.DisplayConfig, logger *slog.Logger) (application.Display, *display.Hub) {
	switch cfg.Mode {
	case "websocket":
		hub := display.NewHub(logger)
		return hub, hub
	case "both":
		hub := display.NewHub(logger)
		return display.Multi{display.NewConsole(os.Stdout), hub}, hub
	default:
		return display.NewConsole(os.Stdout), nil
	}
}

func createNotifier(cfg config.PushoverConfig) application.Notifier {
	if !cfg.Enabled {
		return &application.NoopNotifier{}
	}
	return pushover.NewClient(cfg.Token, cfg.UserKey, cfg.Title)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	// stdout carries the console display, so logs go to stderr.
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
