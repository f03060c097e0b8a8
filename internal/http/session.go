package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/auth"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
)

const sessionCookieName = "auth-token"

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser resolves the session cookie to a user. No cookie, an
// invalid or revoked token, and a deleted user all collapse to
// (nil, nil); the poisoned cookie is expired on the response so the
// client stops sending it. Only storage failures surface as errors.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, nil
	}

	claims, err := auth.ParseSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, cookie.Value)
	if err != nil {
		s.logger.Warn("rejected session token", "reason", err)
		s.clearSessionCookie(w)
		return nil, nil
	}

	if s.redis != nil {
		revoked, err := s.isTokenRevoked(r.Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			s.clearSessionCookie(w)
			return nil, nil
		}
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.clearSessionCookie(w)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(w, r)
		if err != nil {
			s.logger.Error("session resolution failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type userKey struct{}

func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey{}).(*model.User)
	return user
}

// Sessions are stateless; the denylist is an optional extension that
// lets logout revoke a captured token before its natural expiry. With
// no redis configured, revokeToken is a no-op and logout falls back to
// cookie deletion only.

func revokedTokenKey(jti string) string {
	return "session:revoked:" + jti
}

func (s *Server) revokeToken(ctx context.Context, claims *auth.SessionClaims) error {
	if s.redis == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedTokenKey(claims.ID), "1", ttl).Err()
}

func (s *Server) isTokenRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := s.redis.Exists(ctx, revokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
