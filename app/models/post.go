package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	p.Text = strings.TrimSpace(p.Text)
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}

	return nil
}

// BeforeCreate stamps the publication date. It is never touched again.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	return nil
}

// IsAuthoredBy reports whether u wrote the post.
func (p *Post) IsAuthoredBy(u *User) bool {
	return u != nil && u.ID != 0 && p.AuthorID == u.ID
}

// SetAuthor sets the owning user and updates the AuthorID
func (p *Post) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}

	p.Author = author
	p.AuthorID = author.ID
	return nil
}

// SetGroup files the post under g, or clears the group when g is nil.
func (p *Post) SetGroup(g *Group) {
	p.Group = g
	if g == nil {
		p.GroupID = nil
		return
	}
	id := g.ID
	p.GroupID = &id
}

// HasImage reports whether an image is attached.
func (p *Post) HasImage() bool {
	return p.Image != ""
}
