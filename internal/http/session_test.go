package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/auth"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/config"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/repository"
)

func newTestServer(cfg config.Config) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "test-issuer"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, repository.NewStore(nil), nil, logger)
}

func TestCurrentUserNoCookie(t *testing.T) {
	server := newTestServer(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	user, err := server.currentUser(rec, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected anonymous, got %+v", user)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookie mutation for anonymous request")
	}
}

func TestCurrentUserTamperedToken(t *testing.T) {
	server := newTestServer(config.Config{})

	// Signed with a different key, so signature verification fails.
	token, err := auth.NewSessionToken("other-secret", "test-issuer", time.Hour, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	user, err := server.currentUser(rec, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected anonymous for tampered token")
	}
	assertCookieCleared(t, rec)
}

func TestCurrentUserExpiredToken(t *testing.T) {
	server := newTestServer(config.Config{})

	token, err := auth.NewSessionToken("test-secret", "test-issuer", -time.Hour, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	user, err := server.currentUser(rec, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected anonymous for expired token")
	}
	assertCookieCleared(t, rec)
}

// An invalid session must look exactly like no session from the
// caller's side: same status, same body.
func TestInvalidSessionIndistinguishableFromAnonymous(t *testing.T) {
	server := newTestServer(config.Config{})
	router := server.Router()

	noCookie := httptest.NewRecorder()
	router.ServeHTTP(noCookie, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	garbage := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	garbage.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})
	badCookie := httptest.NewRecorder()
	router.ServeHTTP(badCookie, garbage)

	if noCookie.Code != http.StatusUnauthorized || badCookie.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", noCookie.Code, badCookie.Code)
	}
	if noCookie.Body.String() != badCookie.Body.String() {
		t.Fatalf("expected identical bodies, got %q vs %q", noCookie.Body.String(), badCookie.Body.String())
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	server := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	server.setSessionCookie(rec, "token-value")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != sessionCookieName || cookie.Value != "token-value" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Fatalf("expected non-Secure cookie outside production")
	}
	if cookie.Path != "/" {
		t.Fatalf("expected path /, got %s", cookie.Path)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax")
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("expected 7-day max age, got %d", cookie.MaxAge)
	}

	prod := newTestServer(config.Config{Production: true})
	rec = httptest.NewRecorder()
	prod.setSessionCookie(rec, "token-value")
	if !rec.Result().Cookies()[0].Secure {
		t.Fatalf("expected Secure cookie in production")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	server := newTestServer(config.Config{})
	router := server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "whatever"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertCookieCleared(t, rec)
}

func TestRequireHTTPSRedirect(t *testing.T) {
	server := newTestServer(config.Config{Production: true})
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "http://crm.example.test/health", nil)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://crm.example.test/health" {
		t.Fatalf("unexpected redirect location %s", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "http://crm.example.test/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 over https, got %d", rec.Code)
	}
}

func assertCookieCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
			return
		}
	}
	t.Fatalf("expected %s cookie to be expired", sessionCookieName)
}
