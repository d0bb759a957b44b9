package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/notemind/notemind/internal/profile"
	"github.com/notemind/notemind/plugin/ai"
	"github.com/notemind/notemind/plugin/maps"
	"github.com/notemind/notemind/plugin/messenger"
	apiv1 "github.com/notemind/notemind/server/router/api/v1"
	"github.com/notemind/notemind/server/runner/digest"
	"github.com/notemind/notemind/server/service/planner"
	"github.com/notemind/notemind/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	digest     *digest.Runner
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			slog.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	var travel planner.TravelResolver
	if profile.IsMapsEnabled() {
		travel = maps.NewClient(&maps.Config{
			APIKey:  profile.MapsAPIKey,
			BaseURL: profile.MapsBaseURL,
		})
	} else {
		slog.Info("maps not configured, travel bracketing disabled")
	}
	plannerService := planner.NewService(store, travel, planner.BusinessHoursOptions())

	var extractor apiv1.IntentExtractor
	if profile.IsAIEnabled() {
		extractor = ai.NewExtractor(ai.Config{
			APIKey:  profile.AIAPIKey,
			BaseURL: profile.AIBaseURL,
			Model:   profile.AIModel,
		})
	} else {
		slog.Info("AI not configured, message extraction disabled")
	}

	bot := messenger.NewClient(&messenger.Config{
		Token:   profile.BotToken,
		BaseURL: profile.BotBaseURL,
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiService := apiv1.NewAPIV1Service(profile.WebhookSecret, profile, store, plannerService, extractor, bot)
	if profile.IsAIEnabled() {
		apiService.Transcriber = ai.NewTranscriber(ai.Config{
			APIKey:  profile.AIAPIKey,
			BaseURL: profile.AIBaseURL,
		})
		apiService.Downloader = bot
	}
	apiService.Register(e.Group("/api/v1"))

	if profile.DigestCron != "" {
		runner, err := digest.NewRunner(store, bot, profile.DigestCron)
		if err != nil {
			return nil, fmt.Errorf("failed to create digest runner: %w", err)
		}
		s.digest = runner
	}

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	if s.digest != nil {
		s.digest.Start()
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", "err", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.digest != nil {
		s.digest.Stop()
	}

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "err", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}

	slog.Info("server stopped")
}
