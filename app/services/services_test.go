package services

import (
	"context"
	"testing"
	"time"

	"postboard/app/models"
	"postboard/app/repositories/mock"
	"postboard/app/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

func newMediaStore(t *testing.T) storage.MediaStore {
	t.Helper()
	media, err := storage.NewBadgerMediaStore("")
	require.NoError(t, err)
	t.Cleanup(func() { media.Close() })
	return media
}

func addUser(t *testing.T, store *mock.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func addPost(t *testing.T, store *mock.Store, author *models.User, text string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID, PubDate: at}
	require.NoError(t, store.Posts.Create(context.Background(), post))
	return post
}
