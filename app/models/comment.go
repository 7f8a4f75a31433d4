package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	c.Text = strings.TrimSpace(c.Text)
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.PostID == nil {
		return errors.New("post cannot be empty")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	c.Active = true
	return nil
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	id := post.ID
	c.Post = post
	c.PostID = &id
	return nil
}

// SetAuthor sets the commenting user and updates the AuthorID
func (c *Comment) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}

	c.Author = author
	c.AuthorID = author.ID
	return nil
}
