package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchfoundry/internal/chat"
	"matchfoundry/internal/db"
	"matchfoundry/internal/extract"
	"matchfoundry/internal/meeting"
	"matchfoundry/internal/notify"
	"matchfoundry/internal/server"
	"matchfoundry/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	checkinRepo := store.NewCheckinRepository(pool)
	suggestionRepo := store.NewSuggestionRepository(pool)
	chatRepo := store.NewChatRepository(pool)

	chats := chat.NewService(chatRepo, meeting.NewGenerator(config.MeetingBaseURL), logger)

	var extractor extract.Extractor = extract.NewHeuristic()
	if config.OpenAIAPIKey != "" {
		extractor = extract.NewOpenAI(config.OpenAIAPIKey, config.OpenAIModel, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using heuristic extraction")
	}

	var notifier notify.Notifier = notify.NewMock(logger)
	if config.ResendAPIKey != "" {
		notifier = notify.NewResend(config.ResendAPIKey, config.NotifyFrom)
	} else {
		logger.Warn("RESEND_API_KEY not set, notifications are logged only")
	}

	srv, err := server.New(
		config,
		logger,
		userRepo,
		checkinRepo,
		suggestionRepo,
		chatRepo,
		chats,
		extractor,
		notifier,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
