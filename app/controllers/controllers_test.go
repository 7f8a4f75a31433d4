package controllers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"postboard/app/auth"
	"postboard/app/cache"
	"postboard/app/config"
	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/repositories/mock"
	"postboard/app/services"
	"postboard/app/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

// captureRenderer records the last page rendered instead of executing templates.
type captureRenderer struct {
	calls int
	name  string
	data  map[string]any
}

func (c *captureRenderer) Render(w io.Writer, name string, data map[string]any) error {
	c.calls++
	c.name = name
	c.data = data
	_, err := fmt.Fprintf(w, "<p>%s</p>", name)
	return err
}

type harness struct {
	store    *mock.Store
	renderer *captureRenderer
	cache    cache.PageCache
	media    storage.MediaStore
	sessions *auth.SessionManager
	router   *mux.Router
}

var testSettings = Settings{PageSize: 10, DetailPageSize: 5, MaxUploadBytes: 1 << 20}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := mock.NewStore()
	renderer := &captureRenderer{}

	pageCache, err := cache.NewBadgerCache("", 20*time.Second)
	require.NoError(t, err)
	media, err := storage.NewBadgerMediaStore("")
	require.NoError(t, err)
	t.Cleanup(func() {
		pageCache.Close()
		media.Close()
	})

	sessions := auth.NewSessionManager(config.SessionConfig{
		Secret:     "controller-test-secret-controller-test",
		CookieName: "postboard_session",
		TTL:        time.Hour,
	})

	postService := services.NewPostService(store.Posts, media, nil)
	groupService := services.NewGroupService(store.Groups)
	commentService := services.NewCommentService(store.Comments)
	followService := services.NewFollowService(store.Follows, nil)
	userService := services.NewUserService(store.Users)

	posts := NewPostController(renderer, postService, groupService, commentService, pageCache, testSettings)
	comments := NewCommentController(renderer, postService, commentService)
	profiles := NewProfileController(renderer, userService, postService, followService, testSettings)
	authc := NewAuthController(renderer, userService, sessions)
	mediac := NewMediaController(renderer, media)

	router := mux.NewRouter()
	router.HandleFunc("/", posts.Index).Methods("GET")
	router.HandleFunc("/group/{slug}", posts.GroupPosts).Methods("GET")
	router.HandleFunc("/new", middleware.RequireLogin(posts.New)).Methods("GET", "POST")
	router.HandleFunc("/follow", middleware.RequireLogin(profiles.FollowIndex)).Methods("GET")
	router.HandleFunc("/auth/login/", authc.Login).Methods("GET", "POST")
	router.HandleFunc("/auth/logout/", authc.Logout).Methods("GET", "POST")
	router.HandleFunc("/auth/signup/", authc.Signup).Methods("GET", "POST")
	router.HandleFunc("/media/{key:.+}", mediac.Serve).Methods("GET", "HEAD")
	router.HandleFunc("/{username}/", profiles.Profile).Methods("GET")
	router.HandleFunc("/{username}/follow", middleware.RequireLogin(profiles.Follow)).Methods("GET", "POST")
	router.HandleFunc("/{username}/unfollow", middleware.RequireLogin(profiles.Unfollow)).Methods("GET", "POST")
	router.HandleFunc("/{username}/{post_id:[0-9]+}", posts.Show).Methods("GET")
	router.HandleFunc("/{username}/{post_id:[0-9]+}/edit", middleware.RequireLogin(posts.Edit)).Methods("GET", "POST")
	router.HandleFunc("/{username}/{post_id:[0-9]+}/comment", middleware.RequireLogin(comments.Create)).Methods("POST")
	router.NotFoundHandler = http.HandlerFunc(NewErrorController(renderer).NotFound)

	return &harness{
		store:    store,
		renderer: renderer,
		cache:    pageCache,
		media:    media,
		sessions: sessions,
		router:   router,
	}
}

func (h *harness) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, user.SetPassword("correct horse"))
	require.NoError(t, h.store.Users.Create(context.Background(), user))
	return user
}

func (h *harness) addGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: title}
	require.NoError(t, h.store.Groups.Create(context.Background(), group))
	return group
}

func (h *harness) addPost(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	post.SetGroup(group)
	require.NoError(t, h.store.Posts.Create(context.Background(), post))
	return post
}

// do serves req as user; nil means anonymous.
func (h *harness) do(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(path string, user *models.User) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (h *harness) post(path string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, user)
}

func postPath(post *models.Post, username string) string {
	return fmt.Sprintf("/%s/%d", username, post.ID)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func postFilterAll() repositories.PostFilter {
	return repositories.PostFilter{}
}

func postFilterAuthor(id uint) repositories.PostFilter {
	return repositories.PostFilter{AuthorID: &id}
}
