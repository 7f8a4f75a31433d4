package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postboard/app/auth"
	"postboard/app/config"
	"postboard/app/logger"
	"postboard/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen string
	handler := RequestID(zap.New(core))(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, seen, fields["request_id"])
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	handler := RequestID(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	errorPage := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("error page"))
	})
	handler := Recoverer(errorPage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "error page", rr.Body.String())
}

type stubUsers map[uint]*models.User

func (s stubUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestAuthenticate(t *testing.T) {
	sessions := auth.NewSessionManager(config.SessionConfig{
		Secret:     "test-secret-key-at-least-32-characters",
		CookieName: "postboard_session",
		TTL:        time.Hour,
	})
	users := stubUsers{1: {ID: 1, Username: "leo"}}

	var got *models.User
	handler := Authenticate(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.UserFromContext(r.Context())
	}))

	cookieFor := func(id uint) *http.Cookie {
		rr := httptest.NewRecorder()
		require.NoError(t, sessions.Login(rr, id, "x"))
		return rr.Result().Cookies()[0]
	}

	tests := []struct {
		name     string
		cookie   *http.Cookie
		wantUser string
	}{
		{"no cookie", nil, ""},
		{"valid session", cookieFor(1), "leo"},
		{"deleted user", cookieFor(2), ""},
		{"tampered cookie", &http.Cookie{Name: "postboard_session", Value: "garbage"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if tt.wantUser == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantUser, got.Username)
		})
	}
}

func TestRequireLogin(t *testing.T) {
	handler := RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/new", nil))
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/auth/login/?next=/new", rr.Header().Get("Location"))
	})

	t.Run("query is kept in next", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/follow?page=2", nil))
		assert.Equal(t, "/auth/login/?next=/follow%3Fpage%3D2", rr.Header().Get("Location"))
	})

	t.Run("logged in passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/new", nil)
		req = req.WithContext(auth.WithUser(req.Context(), &models.User{ID: 1}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Handler(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
