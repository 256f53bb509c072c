package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"matchfoundry/internal"
	"matchfoundry/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.userRepo.UserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.respondServiceError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	signed, expiresIn, err := s.issueToken(user)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue session token")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, signed)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.respondJSON(w, http.StatusOK, loginResponse{Token: signed, User: *user})
}

func (s *Service) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Service) issueToken(user *types.User) (string, int, error) {
	now := time.Now()
	ttl := time.Duration(s.config.TokenTTLMinutes) * time.Minute

	token, err := jwt.NewBuilder().
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim("email", user.Email).
		Claim("role", string(user.Role)).
		Build()
	if err != nil {
		return "", 0, err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), []byte(s.config.JWTSecret)))
	if err != nil {
		return "", 0, err
	}

	return string(signed), int(ttl.Seconds()), nil
}
