package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postboard/app/auth"
	"postboard/app/config"
	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/repositories/mock"
	"postboard/app/services"
	"postboard/app/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nameRenderer writes the page name and panics on the names in panicOn.
type nameRenderer struct {
	last    string
	panicOn map[string]bool
}

func (n *nameRenderer) Render(w io.Writer, name string, data map[string]any) error {
	if n.panicOn[name] {
		panic("render " + name)
	}
	n.last = name
	_, err := fmt.Fprintf(w, "page:%s", name)
	return err
}

type pingOK struct{}

func (pingOK) Ping(ctx context.Context) error { return nil }

type fixture struct {
	handler  http.Handler
	renderer *nameRenderer
	sessions *auth.SessionManager
	store    *mock.Store
	leo      *models.User
}

func setupRouter(t *testing.T, metricsEnabled bool) *fixture {
	t.Helper()
	store := mock.NewStore()
	renderer := &nameRenderer{panicOn: map[string]bool{}}

	media, err := storage.NewBadgerMediaStore("")
	require.NoError(t, err)
	t.Cleanup(func() { media.Close() })

	sessions := auth.NewSessionManager(config.SessionConfig{
		Secret:     "routes-test-secret-routes-test-secret",
		CookieName: "postboard_session",
		TTL:        time.Hour,
	})
	settings := controllers.Settings{PageSize: 10, DetailPageSize: 5, MaxUploadBytes: 1 << 20}

	posts := services.NewPostService(store.Posts, media, nil)
	groups := services.NewGroupService(store.Groups)
	comments := services.NewCommentService(store.Comments)
	follows := services.NewFollowService(store.Follows, nil)
	users := services.NewUserService(store.Users)

	handler := SetupRoutes(Controllers{
		Posts:    controllers.NewPostController(renderer, posts, groups, comments, nil, settings),
		Comments: controllers.NewCommentController(renderer, posts, comments),
		Profiles: controllers.NewProfileController(renderer, users, posts, follows, settings),
		Auth:     controllers.NewAuthController(renderer, users, sessions),
		Media:    controllers.NewMediaController(renderer, media),
		Health:   controllers.NewHealthController(pingOK{}),
		Errors:   controllers.NewErrorController(renderer),
	}, Options{
		Sessions:       sessions,
		Users:          users,
		LoginLimiter:   middleware.NewRateLimiter(1, 2),
		MetricsEnabled: metricsEnabled,
	})

	ctx := context.Background()
	leo := &models.User{Username: "leo", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(ctx, leo))
	require.NoError(t, store.Groups.Create(ctx, &models.Group{Title: "Cats", Slug: "cats"}))
	require.NoError(t, store.Posts.Create(ctx, &models.Post{Text: "hello", AuthorID: leo.ID}))

	return &fixture{handler: handler, renderer: renderer, sessions: sessions, store: store, leo: leo}
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signedIn(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	token, _, err := f.sessions.Issue(f.leo.ID, f.leo.Username)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: f.sessions.CookieName(), Value: token})
	return req
}

func TestRoutes(t *testing.T) {
	f := setupRouter(t, false)

	tests := []struct {
		name     string
		method   string
		path     string
		signedIn bool
		status   int
		page     string
		location string
	}{
		{"index", "GET", "/", false, http.StatusOK, "index", ""},
		{"group", "GET", "/group/cats", false, http.StatusOK, "group", ""},
		{"unknown group", "GET", "/group/dogs", false, http.StatusNotFound, "404", ""},
		{"new anonymous", "GET", "/new", false, http.StatusFound, "", "/auth/login/?next=/new"},
		{"new signed in", "GET", "/new", true, http.StatusOK, "new_post", ""},
		{"follow feed anonymous", "GET", "/follow", false, http.StatusFound, "", "/auth/login/?next=/follow"},
		{"follow feed signed in", "GET", "/follow", true, http.StatusOK, "follow", ""},
		{"profile", "GET", "/leo/", false, http.StatusOK, "profile", ""},
		{"unknown profile", "GET", "/nobody/", false, http.StatusNotFound, "404", ""},
		{"post", "GET", "/leo/1", false, http.StatusOK, "post", ""},
		{"post wrong author", "GET", "/ann/1", false, http.StatusNotFound, "404", ""},
		{"post id not numeric", "GET", "/leo/abc", false, http.StatusNotFound, "404", ""},
		{"edit signed in", "GET", "/leo/1/edit", true, http.StatusOK, "new_post", ""},
		{"edit anonymous", "GET", "/leo/1/edit", false, http.StatusFound, "", "/auth/login/?next=/leo/1/edit"},
		{"comment anonymous", "POST", "/leo/1/comment", false, http.StatusFound, "", "/auth/login/?next=/leo/1/comment"},
		{"comment by GET", "GET", "/leo/1/comment", true, http.StatusMethodNotAllowed, "", ""},
		{"follow self", "POST", "/leo/follow", true, http.StatusFound, "", "/leo/"},
		{"unfollow", "GET", "/leo/unfollow", true, http.StatusFound, "", "/leo/"},
		{"login", "GET", "/auth/login/", false, http.StatusOK, "login", ""},
		{"signup", "GET", "/auth/signup/", false, http.StatusOK, "signup", ""},
		{"logout", "GET", "/auth/logout/", true, http.StatusFound, "", "/"},
		{"missing media", "GET", "/media/posts/nothing.png", false, http.StatusNotFound, "404", ""},
		{"unmatched", "GET", "/a/b/c/d", false, http.StatusNotFound, "404", ""},
		{"metrics disabled", "GET", "/metrics", false, http.StatusNotFound, "404", ""},
		{"health", "GET", "/healthz", false, http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.renderer.last = ""
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.signedIn {
				req = f.signedIn(t, req)
			}
			rec := f.serve(req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.page, f.renderer.last)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRoutesMetricsEnabled(t *testing.T) {
	f := setupRouter(t, true)
	f.serve(httptest.NewRequest(http.MethodGet, "/leo/", nil))

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/{username}/"`)
}

func TestRoutesRecoverFromPanic(t *testing.T) {
	f := setupRouter(t, false)
	f.renderer.panicOn["profile"] = true

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/leo/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "500", f.renderer.last)
}

func TestRoutesLoginRateLimit(t *testing.T) {
	f := setupRouter(t, false)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login/", strings.NewReader("username=leo&password=wrong"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		codes = append(codes, f.serve(req).Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusOK, codes[0])
}

func TestRoutesStaleSessionIsAnonymous(t *testing.T) {
	f := setupRouter(t, false)
	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/new", nil))
	require.NoError(t, f.store.Users.Delete(context.Background(), f.leo.ID))

	rec := f.serve(req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/new", rec.Header().Get("Location"))
}
