package models

import "errors"

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("users cannot follow themselves")

// NewFollow builds the edge "user follows author".
func NewFollow(user, author *User) (*Follow, error) {
	if user == nil || author == nil {
		return nil, errors.New("follower and author are required")
	}
	if user.ID == author.ID {
		return nil, ErrSelfFollow
	}
	return &Follow{UserID: user.ID, AuthorID: author.ID}, nil
}

// Validate checks if the follow edge meets all validation requirements
func (f *Follow) Validate() error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if f.UserID == f.AuthorID {
		return ErrSelfFollow
	}
	return nil
}
