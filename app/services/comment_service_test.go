package services

import (
	"context"
	"testing"
	"time"

	"postboard/app/repositories"
	"postboard/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	service := NewCommentService(store.Comments)

	leo := addUser(t, store, "leo")
	ann := addUser(t, store, "ann")
	post := addPost(t, store, leo, "hello", time.Now())

	t.Run("add sets post and author", func(t *testing.T) {
		comment, err := service.Add(ctx, ann, post, "  Nice  ")
		require.NoError(t, err)
		assert.Equal(t, "Nice", comment.Text)
		assert.Equal(t, ann.ID, comment.AuthorID)
		require.NotNil(t, comment.PostID)
		assert.Equal(t, post.ID, *comment.PostID)
		assert.True(t, comment.Active)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		_, err := service.Add(ctx, ann, post, " ")
		assert.Error(t, err)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := service.Add(ctx, nil, post, "Hi")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("list for post", func(t *testing.T) {
		_, err := service.Add(ctx, leo, post, "Thanks")
		require.NoError(t, err)

		comments, err := service.ListForPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "leo", comments[0].Author.Username)
	})

	t.Run("delete", func(t *testing.T) {
		comment, err := service.Add(ctx, ann, post, "Spam")
		require.NoError(t, err)

		deleted, err := service.Delete(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Spam", deleted.Text)
		assert.Equal(t, "ann", deleted.Author.Username)

		_, err = service.Delete(ctx, comment.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
