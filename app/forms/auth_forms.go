package forms

import (
	"net/http"
	"strings"
)

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
	Errors   Errors `form:"-" validate:"-"`
}

// NewLoginForm returns an unbound form that returns to next after signing in.
func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

// Bind reads the submitted fields.
func (f *LoginForm) Bind(r *http.Request) {
	if err := parse(r, 1<<20); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return
	}
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Password = r.PostFormValue("password")
	if next := r.PostFormValue("next"); next != "" {
		f.Next = next
	}
}

// Valid validates the bound data.
func (f *LoginForm) Valid() bool {
	validateStruct(f, f.Errors)
	return len(f.Errors) == 0
}

// Reject records a failed login.
func (f *LoginForm) Reject() {
	f.Errors.Add("", "Please enter a correct username and password. Note that both fields may be case-sensitive.")
}

// SignupForm registers a new account.
type SignupForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username,notreserved"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Password  string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
	Errors    Errors `form:"-" validate:"-"`
}

// NewSignupForm returns an unbound form.
func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

// Bind reads the submitted fields.
func (f *SignupForm) Bind(r *http.Request) {
	if err := parse(r, 1<<20); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return
	}
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Email = strings.TrimSpace(r.PostFormValue("email"))
	f.FirstName = strings.TrimSpace(r.PostFormValue("first_name"))
	f.LastName = strings.TrimSpace(r.PostFormValue("last_name"))
	f.Password = r.PostFormValue("password1")
	f.Password2 = r.PostFormValue("password2")
}

// Valid validates the bound data.
func (f *SignupForm) Valid() bool {
	validateStruct(f, f.Errors)
	return len(f.Errors) == 0
}

// UsernameTaken records that the username already exists.
func (f *SignupForm) UsernameTaken() {
	f.Errors.Add("username", "A user with that username already exists.")
}
