package controllers

import (
	"net/http"

	"postboard/app/auth"
	"postboard/app/forms"
	"postboard/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	responder
	posts    *services.PostService
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(renderer Renderer, posts *services.PostService, comments *services.CommentService) *CommentController {
	return &CommentController{
		responder: responder{renderer: renderer},
		posts:     posts,
		comments:  comments,
	}
}

// Create adds a comment by the caller and always returns to the post.
// Invalid submissions are dropped.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	post, ok := lookupPost(&cc.responder, cc.posts, w, r)
	if !ok {
		return
	}

	form := forms.NewCommentForm()
	form.Bind(r)
	if form.Valid() {
		if _, err := cc.comments.Add(r.Context(), auth.UserFromContext(r.Context()), post, form.Text); err != nil {
			cc.serverError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, postURL(post), http.StatusFound)
}
