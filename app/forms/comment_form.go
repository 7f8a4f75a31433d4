package forms

import (
	"net/http"
	"strings"
)

// CommentForm is the reply form shown under a post.
type CommentForm struct {
	Text   string `form:"text" validate:"required"`
	Errors Errors `form:"-" validate:"-"`
}

// NewCommentForm returns an unbound form.
func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

// Bind reads the submitted fields.
func (f *CommentForm) Bind(r *http.Request) {
	if err := parse(r, 1<<20); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return
	}
	f.Text = r.PostFormValue("text")
}

// Valid validates the bound data. Text is trimmed in place.
func (f *CommentForm) Valid() bool {
	f.Text = strings.TrimSpace(f.Text)
	validateStruct(f, f.Errors)
	return len(f.Errors) == 0
}
