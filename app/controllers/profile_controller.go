package controllers

import (
	"net/http"

	"postboard/app/auth"
	"postboard/app/models"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// ProfileController handles author pages, follow edges and the follow feed
type ProfileController struct {
	responder
	users    *services.UserService
	posts    *services.PostService
	follows  *services.FollowService
	settings Settings
}

// NewProfileController creates a new ProfileController
func NewProfileController(
	renderer Renderer,
	users *services.UserService,
	posts *services.PostService,
	follows *services.FollowService,
	settings Settings,
) *ProfileController {
	return &ProfileController{
		responder: responder{renderer: renderer},
		users:     users,
		posts:     posts,
		follows:   follows,
		settings:  settings,
	}
}

// Profile lists an author's posts with their follow counts.
func (pc *ProfileController) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, ok := pc.author(w, r)
	if !ok {
		return
	}

	page, err := pc.posts.ListByAuthor(ctx, author.ID, pc.settings.PageSize, r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	count, err := pc.posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	followers, followings, err := pc.follows.Counts(ctx, author)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	following, err := pc.follows.IsFollowing(ctx, auth.UserFromContext(ctx), author)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	pc.render(w, r, http.StatusOK, "profile", map[string]any{
		"author":     author,
		"page":       page,
		"paginator":  page.Paginator,
		"count":      count,
		"followers":  followers,
		"followings": followings,
		"following":  following,
	})
}

// Follow makes the caller follow the author, then returns to the profile.
func (pc *ProfileController) Follow(w http.ResponseWriter, r *http.Request) {
	author, ok := pc.author(w, r)
	if !ok {
		return
	}
	if err := pc.follows.Follow(r.Context(), auth.UserFromContext(r.Context()), author); err != nil {
		pc.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(author), http.StatusFound)
}

// Unfollow removes the caller's edge to the author, then returns to the profile.
func (pc *ProfileController) Unfollow(w http.ResponseWriter, r *http.Request) {
	author, ok := pc.author(w, r)
	if !ok {
		return
	}
	if err := pc.follows.Unfollow(r.Context(), auth.UserFromContext(r.Context()), author); err != nil {
		pc.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(author), http.StatusFound)
}

// FollowIndex lists posts by the authors the caller follows.
func (pc *ProfileController) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	page, err := pc.posts.Feed(r.Context(), user.ID, pc.settings.PageSize, r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "follow", map[string]any{
		"page":      page,
		"paginator": page.Paginator,
	})
}

func (pc *ProfileController) author(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	author, err := pc.users.GetByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		pc.fail(w, r, err)
		return nil, false
	}
	return author, true
}
