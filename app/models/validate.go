package models

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	validate = NewValidator()
)

// reservedUsernames collide with top-level routes.
var reservedUsernames = map[string]bool{
	"new":     true,
	"follow":  true,
	"group":   true,
	"auth":    true,
	"media":   true,
	"static":  true,
	"metrics": true,
	"healthz": true,
}

// IsReservedUsername reports whether name would shadow a route, ignoring case.
func IsReservedUsername(name string) bool {
	return reservedUsernames[strings.ToLower(strings.TrimSpace(name))]
}

// NewValidator returns a validator with the slug, username and notreserved tags registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notreserved", func(fl validator.FieldLevel) bool {
		return !IsReservedUsername(fl.Field().String())
	})
	return v
}
