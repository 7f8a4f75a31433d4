package controllers

import (
	"errors"
	"net/http"
	"strings"

	"postboard/app/auth"
	"postboard/app/forms"
	"postboard/app/logger"
	"postboard/app/metrics"
	"postboard/app/middleware"
	"postboard/app/services"

	"go.uber.org/zap"
)

// AuthController handles login, logout and signup
type AuthController struct {
	responder
	users    *services.UserService
	sessions *auth.SessionManager
}

// NewAuthController creates a new AuthController
func NewAuthController(renderer Renderer, users *services.UserService, sessions *auth.SessionManager) *AuthController {
	return &AuthController{
		responder: responder{renderer: renderer},
		users:     users,
		sessions:  sessions,
	}
}

// Login shows the login form and signs the user in, returning to next.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewLoginForm(r.URL.Query().Get("next"))

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Valid() {
			user, err := ac.users.Authenticate(ctx, form.Username, form.Password)
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				metrics.RecordLogin(false)
				logger.FromContext(ctx).Info("Login rejected", zap.String("username", form.Username))
				form.Reject()
			case err != nil:
				ac.serverError(w, r, err)
				return
			default:
				if err := ac.sessions.Login(w, user.ID, user.Username); err != nil {
					ac.serverError(w, r, err)
					return
				}
				metrics.RecordLogin(true)
				logger.FromContext(ctx).Info("User logged in", zap.Uint("user_id", user.ID))
				http.Redirect(w, r, safeNext(form.Next), http.StatusFound)
				return
			}
		}
	}

	ac.render(w, r, http.StatusOK, "login", map[string]any{"form": form})
}

// Logout clears the session cookie.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.Logout(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Signup registers an account and sends the new user to the login page.
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewSignupForm()

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Valid() {
			user, err := ac.users.Register(ctx, services.RegisterInput{
				Username:  form.Username,
				Email:     form.Email,
				FirstName: form.FirstName,
				LastName:  form.LastName,
				Password:  form.Password,
			})
			switch {
			case errors.Is(err, services.ErrUsernameTaken):
				form.UsernameTaken()
			case err != nil:
				ac.serverError(w, r, err)
				return
			default:
				logger.FromContext(ctx).Info("User registered", zap.Uint("user_id", user.ID))
				http.Redirect(w, r, middleware.LoginURL, http.StatusFound)
				return
			}
		}
	}

	ac.render(w, r, http.StatusOK, "signup", map[string]any{"form": form})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
