// Package service assembles the application and runs it.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"postboard/app/auth"
	"postboard/app/cache"
	"postboard/app/config"
	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"
	"postboard/app/storage"

	"go.uber.org/zap"
)

// App holds the wired application: storage, services and the HTTP handler.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *repositories.Database
	Cache    cache.PageCache
	Media    storage.MediaStore
	Sessions *auth.SessionManager

	Users    *services.UserService
	Groups   *services.GroupService
	Posts    *services.PostService
	Comments *services.CommentService
	Follows  *services.FollowService

	Handler http.Handler
}

// Option customizes NewApp.
type Option func(*appOptions)

type appOptions struct {
	renderer controllers.Renderer
	cache    cache.PageCache
	media    storage.MediaStore
}

// WithRenderer replaces the embedded HTML templates.
func WithRenderer(r controllers.Renderer) Option {
	return func(o *appOptions) {
		o.renderer = r
	}
}

// WithPageCache uses c instead of the cache configured in cfg.Cache.
func WithPageCache(c cache.PageCache) Option {
	return func(o *appOptions) {
		o.cache = c
	}
}

// WithMediaStore uses m instead of the store configured in cfg.Media.
func WithMediaStore(m storage.MediaStore) Option {
	return func(o *appOptions) {
		o.media = m
	}
}

// NewApp opens the database, migrates it and wires every component.
// Close releases what NewApp opened, including stores passed as options.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}

	app := &App{Config: cfg, Logger: log}

	db, err := repositories.OpenDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := db.Migrate(); err != nil {
		app.Close()
		return nil, err
	}

	app.Cache = o.cache
	if app.Cache == nil {
		if app.Cache, err = cache.New(cfg.Cache, cache.WithLogger(log)); err != nil {
			app.Close()
			return nil, err
		}
	}

	app.Media = o.media
	if app.Media == nil {
		if app.Media, err = storage.New(ctx, cfg.Media, log); err != nil {
			app.Close()
			return nil, err
		}
	}

	renderer := o.renderer
	if renderer == nil {
		html, err := controllers.NewHTMLRenderer()
		if err != nil {
			app.Close()
			return nil, err
		}
		renderer = html
	}

	app.Sessions = auth.NewSessionManager(cfg.Session)
	app.Users = services.NewUserService(repositories.NewGormUserRepository(db.DB))
	app.Groups = services.NewGroupService(repositories.NewGormGroupRepository(db.DB))
	app.Posts = services.NewPostService(repositories.NewGormPostRepository(db.DB), app.Media, log)
	app.Comments = services.NewCommentService(repositories.NewGormCommentRepository(db.DB))
	app.Follows = services.NewFollowService(repositories.NewGormFollowRepository(db.DB), log)

	settings := controllers.Settings{
		PageSize:       cfg.Pagination.PageSize,
		DetailPageSize: cfg.Pagination.DetailPageSize,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	}
	app.Handler = routes.SetupRoutes(routes.Controllers{
		Posts:    controllers.NewPostController(renderer, app.Posts, app.Groups, app.Comments, app.Cache, settings),
		Comments: controllers.NewCommentController(renderer, app.Posts, app.Comments),
		Profiles: controllers.NewProfileController(renderer, app.Users, app.Posts, app.Follows, settings),
		Auth:     controllers.NewAuthController(renderer, app.Users, app.Sessions),
		Media:    controllers.NewMediaController(renderer, app.Media),
		Health:   controllers.NewHealthController(db),
		Errors:   controllers.NewErrorController(renderer),
	}, routes.Options{
		Logger:         log,
		Sessions:       app.Sessions,
		Users:          app.Users,
		LoginLimiter:   middleware.NewRateLimiter(cfg.HTTP.LoginRate, cfg.HTTP.LoginBurst),
		MetricsEnabled: cfg.HTTP.MetricsEnabled,
	})

	return app, nil
}

// Close releases the cache, media store and database.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Media != nil {
		errs = append(errs, a.Media.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Serve listens on cfg.App.Addr until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.App.Addr,
		Handler:      a.Handler,
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
		IdleTimeout:  a.Config.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting postboard",
			zap.String("addr", srv.Addr),
			zap.String("env", a.Config.App.Env),
			zap.String("database", a.Config.Database.Driver),
			zap.String("cache", a.Config.Cache.Backend),
			zap.String("media", a.Config.Media.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.Logger.Info("Server exited")
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.Config.HTTP.ShutdownTimeout > 0 {
		return a.Config.HTTP.ShutdownTimeout
	}
	return 10 * time.Second
}

// RunAppServer builds the application from cfg and serves it until ctx is done.
func RunAppServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Serve(ctx)
}
