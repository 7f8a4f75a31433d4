// Package routes wires URLs to controllers.
package routes

import (
	"net/http"

	"postboard/app/auth"
	"postboard/app/controllers"
	"postboard/app/metrics"
	"postboard/app/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controllers groups every handler the router dispatches to.
type Controllers struct {
	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Profiles *controllers.ProfileController
	Auth     *controllers.AuthController
	Media    *controllers.MediaController
	Health   *controllers.HealthController
	Errors   *controllers.ErrorController
}

// Options configures the middleware around the router.
type Options struct {
	Logger   *zap.Logger
	Sessions *auth.SessionManager
	Users    middleware.UserLookup
	// LoginLimiter throttles login attempts; nil disables it.
	LoginLimiter   *middleware.RateLimiter
	MetricsEnabled bool
}

// SetupRoutes defines the application's routes and returns the full handler
// chain. Fixed paths are registered before the /{username}/ patterns.
func SetupRoutes(c Controllers, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	router.HandleFunc("/healthz", c.Health.Health).Methods("GET")
	if opts.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	login := c.Auth.Login
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Handler(login)
	}

	// Site pages
	router.HandleFunc("/", c.Posts.Index).Methods("GET")
	router.HandleFunc("/group/{slug}", c.Posts.GroupPosts).Methods("GET")
	router.HandleFunc("/new", middleware.RequireLogin(c.Posts.New)).Methods("GET", "POST")
	router.HandleFunc("/follow", middleware.RequireLogin(c.Profiles.FollowIndex)).Methods("GET")
	router.HandleFunc("/media/{key:.+}", c.Media.Serve).Methods("GET", "HEAD")

	// Accounts
	accounts := router.PathPrefix("/auth").Subrouter()
	accounts.HandleFunc("/login/", login).Methods("GET", "POST")
	accounts.HandleFunc("/logout/", c.Auth.Logout).Methods("GET", "POST")
	accounts.HandleFunc("/signup/", c.Auth.Signup).Methods("GET", "POST")

	// Profiles and posts
	router.HandleFunc("/{username}/", c.Profiles.Profile).Methods("GET")
	router.HandleFunc("/{username}/follow", middleware.RequireLogin(c.Profiles.Follow)).Methods("GET", "POST")
	router.HandleFunc("/{username}/unfollow", middleware.RequireLogin(c.Profiles.Unfollow)).Methods("GET", "POST")

	post := router.PathPrefix("/{username}/{post_id:[0-9]+}").Subrouter()
	post.HandleFunc("", c.Posts.Show).Methods("GET")
	post.HandleFunc("/edit", middleware.RequireLogin(c.Posts.Edit)).Methods("GET", "POST")
	post.HandleFunc("/comment", middleware.RequireLogin(c.Comments.Create)).Methods("POST")

	router.NotFoundHandler = http.HandlerFunc(c.Errors.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.Errors.MethodNotAllowed)

	var handler http.Handler = router
	handler = middleware.Authenticate(opts.Sessions, opts.Users)(handler)
	handler = middleware.Recoverer(http.HandlerFunc(c.Errors.ServerError))(handler)
	handler = middleware.Logger(handler)
	handler = middleware.RequestID(opts.Logger)(handler)
	return handler
}
