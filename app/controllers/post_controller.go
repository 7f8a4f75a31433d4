package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/app/auth"
	"postboard/app/cache"
	"postboard/app/forms"
	"postboard/app/logger"
	"postboard/app/models"
	"postboard/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// IndexCachePrefix starts every cached front-page key.
const IndexCachePrefix = "index_page:"

// PostController handles HTTP requests for posts and post listings
type PostController struct {
	responder
	posts    *services.PostService
	groups   *services.GroupService
	comments *services.CommentService
	cache    cache.PageCache
	settings Settings
}

// NewPostController creates a new PostController
func NewPostController(
	renderer Renderer,
	posts *services.PostService,
	groups *services.GroupService,
	comments *services.CommentService,
	pageCache cache.PageCache,
	settings Settings,
) *PostController {
	if pageCache == nil {
		pageCache = cache.NopCache{}
	}
	return &PostController{
		responder: responder{renderer: renderer},
		posts:     posts,
		groups:    groups,
		comments:  comments,
		cache:     pageCache,
		settings:  settings,
	}
}

// IndexCacheKey is the page cache key for the front page as seen by the
// request's viewer. Anonymous visitors share one bucket.
func IndexCacheKey(r *http.Request) string {
	bucket := "anon"
	if user := auth.UserFromContext(r.Context()); user != nil {
		bucket = "u" + strconv.FormatUint(uint64(user.ID), 10)
	}
	return IndexCachePrefix + bucket + ":" + r.URL.RequestURI()
}

// Index lists every post, newest first. Rendered HTML is served from the
// page cache until it expires, so new posts may appear late.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	html := !wantsJSON(r)
	key := IndexCacheKey(r)

	if html {
		page, ok, err := pc.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Page cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			writeHTML(w, http.StatusOK, page)
			return
		}
	}

	page, err := pc.posts.ListAll(ctx, pc.settings.PageSize, r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	data := map[string]any{"page": page, "paginator": page.Paginator}

	if !html {
		pc.render(w, r, http.StatusOK, "index", data)
		return
	}
	body, err := pc.renderBytes(r, "index", data)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	if err := pc.cache.Set(ctx, key, body); err != nil {
		log.Warn("Page cache write failed", zap.String("key", key), zap.Error(err))
	}
	writeHTML(w, http.StatusOK, body)
}

// GroupPosts lists the posts filed under a group.
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := pc.groups.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	page, err := pc.posts.ListByGroup(r.Context(), group.ID, pc.settings.PageSize, r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "group", map[string]any{
		"group":     group,
		"page":      page,
		"paginator": page.Paginator,
	})
}

// New shows and handles the create form. The author is always the caller.
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.UserFromContext(ctx)
	form := forms.NewPostForm(nil, pc.settings.MaxUploadBytes)

	if r.Method == http.MethodPost {
		form.Bind(w, r)
		if form.Valid(ctx, pc.groups) {
			_, err := pc.posts.Create(ctx, user, services.PostInput{
				Text:    form.Text,
				GroupID: form.GroupID(),
				Image:   form.Image,
			})
			if err != nil {
				pc.serverError(w, r, err)
				return
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	pc.renderPostForm(w, r, form, nil)
}

// Show displays a post with its comments and more posts by the same author.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, ok := pc.lookup(w, r)
	if !ok {
		return
	}

	comments, err := pc.comments.ListForPost(ctx, post.ID)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	page, err := pc.posts.ListByAuthor(ctx, post.AuthorID, pc.settings.DetailPageSize, r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	pc.render(w, r, http.StatusOK, "post", map[string]any{
		"post":      post,
		"author":    post.Author,
		"items":     comments,
		"form":      forms.NewCommentForm(),
		"page":      page,
		"paginator": page.Paginator,
	})
}

// Edit shows and handles the edit form. Anyone but the author is sent back
// to the post unchanged.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.UserFromContext(ctx)
	post, ok := pc.lookup(w, r)
	if !ok {
		return
	}
	if !post.IsAuthoredBy(user) {
		http.Redirect(w, r, postURL(post), http.StatusFound)
		return
	}

	form := forms.NewPostForm(post, pc.settings.MaxUploadBytes)
	if r.Method == http.MethodPost {
		form.Bind(w, r)
		if form.Valid(ctx, pc.groups) {
			err := pc.posts.Update(ctx, user, post, services.PostInput{
				Text:       form.Text,
				GroupID:    form.GroupID(),
				Image:      form.Image,
				ClearImage: form.ClearImage,
			})
			if err != nil && !errors.Is(err, services.ErrForbidden) {
				pc.serverError(w, r, err)
				return
			}
			http.Redirect(w, r, postURL(post), http.StatusFound)
			return
		}
	}

	pc.renderPostForm(w, r, form, post)
}

func (pc *PostController) renderPostForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, post *models.Post) {
	groups, err := pc.groups.List(r.Context())
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	data := map[string]any{"form": form, "groups": groups}
	if post != nil {
		data["post"] = post
	}
	pc.render(w, r, http.StatusOK, "new_post", data)
}

// lookup resolves {username}/{post_id}, answering 404 itself when missing.
func (pc *PostController) lookup(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	return lookupPost(&pc.responder, pc.posts, w, r)
}

func lookupPost(rs *responder, posts *services.PostService, w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["post_id"], 10, 64)
	if err != nil {
		rs.notFound(w, r)
		return nil, false
	}
	post, err := posts.Get(r.Context(), vars["username"], uint(id))
	if err != nil {
		rs.fail(w, r, err)
		return nil, false
	}
	return post, true
}

func postURL(post *models.Post) string {
	username := ""
	if post.Author != nil {
		username = post.Author.Username
	}
	return "/" + username + "/" + strconv.FormatUint(uint64(post.ID), 10)
}

func profileURL(user *models.User) string {
	return "/" + user.Username + "/"
}
