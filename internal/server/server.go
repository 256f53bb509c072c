package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"matchfoundry/internal/chat"
	"matchfoundry/internal/extract"
	"matchfoundry/internal/notify"
	"matchfoundry/internal/store"
	"matchfoundry/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	userRepo       *store.UserRepository
	checkinRepo    *store.CheckinRepository
	suggestionRepo *store.SuggestionRepository
	chatRepo       *store.ChatRepository

	chats     *chat.Service
	extractor extract.Extractor
	notifier  notify.Notifier

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	userRepo *store.UserRepository,
	checkinRepo *store.CheckinRepository,
	suggestionRepo *store.SuggestionRepository,
	chatRepo *store.ChatRepository,
	chats *chat.Service,
	extractor extract.Extractor,
	notifier notify.Notifier,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		userRepo:       userRepo,
		checkinRepo:    checkinRepo,
		suggestionRepo: suggestionRepo,
		chatRepo:       chatRepo,

		chats:     chats,
		extractor: extractor,
		notifier:  notifier,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/users", s.handleListUsers, http.MethodGet)

		r.HandleFunc("/api/checkin", s.handleCheckin, http.MethodPost)
		r.HandleFunc("/api/extract_needs_learnings", s.handleExtract, http.MethodPost)

		r.HandleFunc("/api/compute_matches", s.handleComputeMatches, http.MethodPost)
		r.HandleFunc("/api/matches", s.handleListMatches, http.MethodGet)

		r.HandleFunc("/api/chats", s.handleCreateChat, http.MethodPost)
		r.HandleFunc("/api/chats", s.handleListChats, http.MethodGet)
		r.HandleFunc("/api/chats/:chatID/propose_slots", s.handleProposeSlots, http.MethodPost)
		r.HandleFunc("/api/chats/:chatID/select_slot", s.handleSelectSlot, http.MethodPost)

		r.HandleFunc("/api/admin/overview", s.handleAdminOverview, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
