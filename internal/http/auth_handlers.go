package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/auth"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/crypto"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/repository"
)

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func summarize(user model.User) userSummary {
	return userSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	settings, err := s.store.GetSystemSettings(r.Context())
	if err != nil {
		s.logger.Error("settings lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if settings.RegistrationDisabled {
		writeError(w, http.StatusForbidden, "registration_disabled")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken")
			return
		}
		s.logger.Error("user create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := s.issueSession(w, user.ID); err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, summarize(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		s.logger.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, crypto.ErrCorruptCredential) {
			s.logger.Error("stored credential unreadable", "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	if err := s.issueSession(w, user.ID); err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, summarize(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if claims, err := auth.ParseSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, cookie.Value); err == nil {
			if err := s.revokeToken(r.Context(), claims); err != nil {
				s.logger.Warn("token revoke failed", "error", err)
			}
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, summarize(*user))
}

func (s *Server) issueSession(w http.ResponseWriter, userID string) error {
	token, err := auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SessionTTL, userID)
	if err != nil {
		return err
	}
	s.setSessionCookie(w, token)
	return nil
}
