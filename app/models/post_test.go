package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				Text:     "Some text",
				AuthorID: 1,
				PubDate:  time.Now(),
			},
			wantErr: false,
		},
		{
			name: "blank text",
			post: &Post{
				Text:     "   \n\t",
				AuthorID: 1,
				PubDate:  time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing author",
			post: &Post{
				Text:    "Some text",
				PubDate: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero publication date",
			post: &Post{
				Text:     "Some text",
				AuthorID: 1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{Text: "Test Post", AuthorID: 1}

	assert.True(t, post.PubDate.IsZero())
	assert.NoError(t, post.BeforeCreate(nil))
	assert.False(t, post.PubDate.IsZero())

	stamped := post.PubDate
	assert.NoError(t, post.BeforeCreate(nil))
	assert.Equal(t, stamped, post.PubDate)
}

func TestPostOwnership(t *testing.T) {
	author := &User{ID: 7, Username: "leo"}
	other := &User{ID: 8, Username: "leo"}
	post := &Post{Text: "hello"}

	t.Run("set valid author", func(t *testing.T) {
		assert.NoError(t, post.SetAuthor(author))
		assert.Equal(t, author.ID, post.AuthorID)
		assert.True(t, post.IsAuthoredBy(author))
	})

	t.Run("same name is not the same author", func(t *testing.T) {
		assert.False(t, post.IsAuthoredBy(other))
	})

	t.Run("anonymous is never the author", func(t *testing.T) {
		assert.False(t, post.IsAuthoredBy(nil))
		assert.False(t, post.IsAuthoredBy(&User{}))
	})

	t.Run("set nil author", func(t *testing.T) {
		assert.Error(t, post.SetAuthor(nil))
	})
}

func TestPostSetGroup(t *testing.T) {
	post := &Post{Text: "hello"}
	group := &Group{ID: 3, Title: "Cats", Slug: "cats"}

	post.SetGroup(group)
	if assert.NotNil(t, post.GroupID) {
		assert.Equal(t, uint(3), *post.GroupID)
	}

	post.SetGroup(nil)
	assert.Nil(t, post.GroupID)
	assert.Nil(t, post.Group)
}
