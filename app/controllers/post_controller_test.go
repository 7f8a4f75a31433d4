package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"postboard/app/auth"
	"postboard/app/forms"
	"postboard/app/models"
	"postboard/app/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	h := newHarness(t)
	leo := h.addUser(t, "leo")
	for i := 0; i < 12; i++ {
		h.addPost(t, leo, "post", nil)
	}

	t.Run("first page", func(t *testing.T) {
		rec := h.get("/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "index", h.renderer.name)
		page := h.renderer.data["page"].(*pagination.Page[*models.Post])
		assert.Len(t, page.Items, 10)
		assert.Equal(t, 2, h.renderer.data["paginator"].(pagination.Paginator).NumPages)
	})

	t.Run("page parameter", func(t *testing.T) {
		tests := []struct {
			query string
			want  int
			items int
		}{
			{"?page=2", 2, 2},
			{"?page=abc", 1, 10},
			{"?page=99", 2, 2},
		}
		for _, tt := range tests {
			rec := h.get("/"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			page := h.renderer.data["page"].(*pagination.Page[*models.Post])
			assert.Equal(t, tt.want, page.Number, tt.query)
			assert.Len(t, page.Items, tt.items, tt.query)
		}
	})
}

func TestIndexPageCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leo := h.addUser(t, "leo")
	h.addPost(t, leo, "first", nil)

	first := h.get("/?cached=1", nil)
	require.Equal(t, http.StatusOK, first.Code)
	calls := h.renderer.calls

	h.addPost(t, leo, "second", nil)
	second := h.get("/?cached=1", nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, calls, h.renderer.calls, "cached page must not be rendered again")
	assert.Equal(t, first.Body.String(), second.Body.String())

	// A signed-in viewer has their own entry.
	h.get("/?cached=1", leo)
	assert.Equal(t, calls+1, h.renderer.calls)

	require.NoError(t, h.cache.Clear(ctx))
	h.get("/?cached=1", nil)
	assert.Equal(t, calls+2, h.renderer.calls)
	page := h.renderer.data["page"].(*pagination.Page[*models.Post])
	assert.Len(t, page.Items, 2)
}

func TestIndexJSONIsNotCached(t *testing.T) {
	h := newHarness(t)
	leo := h.addUser(t, "leo")
	h.addPost(t, leo, "hello", nil)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json")
		rec := h.do(req, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"text":"hello"`)
	}
	assert.Equal(t, 0, h.renderer.calls)

	_, ok, err := h.cache.Get(context.Background(), IndexCacheKey(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexCacheKey(t *testing.T) {
	user := &models.User{ID: 7, Username: "leo"}
	tests := []struct {
		name   string
		target string
		user   *models.User
		want   string
	}{
		{"anonymous", "/", nil, "index_page:anon:/"},
		{"anonymous with page", "/?page=2", nil, "index_page:anon:/?page=2"},
		{"signed in", "/?page=2", user, "index_page:u7:/?page=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), tt.user))
			}
			assert.Equal(t, tt.want, IndexCacheKey(req))
		})
	}
}

func TestGroupPosts(t *testing.T) {
	h := newHarness(t)
	leo := h.addUser(t, "leo")
	cats := h.addGroup(t, "Cats", "cats")
	dogs := h.addGroup(t, "Dogs", "dogs")
	h.addPost(t, leo, "meow", cats)
	h.addPost(t, leo, "woof", dogs)
	h.addPost(t, leo, "no group", nil)

	rec := h.get("/group/cats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "group", h.renderer.name)
	assert.Equal(t, cats.ID, h.renderer.data["group"].(*models.Group).ID)
	page := h.renderer.data["page"].(*pagination.Page[*models.Post])
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meow", page.Items[0].Text)

	rec = h.get("/group/birds", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404", h.renderer.name)
	assert.Equal(t, "/group/birds", h.renderer.data["path"])
}

func TestNewPost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leo := h.addUser(t, "leo")
	mallory := h.addUser(t, "mallory")
	cats := h.addGroup(t, "Cats", "cats")

	t.Run("anonymous is sent to login", func(t *testing.T) {
		rec := h.get("/new", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login/?next=/new", rec.Header().Get("Location"))
	})

	t.Run("form", func(t *testing.T) {
		rec := h.get("/new", leo)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new_post", h.renderer.name)
		assert.NotContains(t, h.renderer.data, "post")
		assert.Len(t, h.renderer.data["groups"], 1)
	})

	t.Run("author is the caller", func(t *testing.T) {
		form := url.Values{
			"text":   {"hello"},
			"group":  {"1"},
			"author": {"2"},
		}
		rec := h.post("/new", form, leo)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		posts, err := h.store.Posts.Count(ctx, postFilterAuthor(leo.ID))
		require.NoError(t, err)
		assert.EqualValues(t, 1, posts)
		posts, err = h.store.Posts.Count(ctx, postFilterAuthor(mallory.ID))
		require.NoError(t, err)
		assert.EqualValues(t, 0, posts)

		post, err := h.store.Posts.GetByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, post.GroupID)
		assert.Equal(t, cats.ID, *post.GroupID)
	})

	t.Run("invalid input re-renders", func(t *testing.T) {
		tests := []struct {
			name  string
			form  url.Values
			field string
		}{
			{"blank text", url.Values{"text": {"   "}}, "text"},
			{"unknown group", url.Values{"text": {"x"}, "group": {"42"}}, "group"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before, _ := h.store.Posts.Count(ctx, postFilterAll())
				rec := h.post("/new", tt.form, leo)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "new_post", h.renderer.name)
				form := h.renderer.data["form"].(*forms.PostForm)
				assert.True(t, form.Errors.Has(tt.field))
				after, _ := h.store.Posts.Count(ctx, postFilterAll())
				assert.Equal(t, before, after)
			})
		}
	})

	t.Run("image upload", func(t *testing.T) {
		req := multipartRequest(t, "/new", map[string]string{"text": "with picture"}, "small.png", pngBytes(t))
		rec := h.do(req, leo)
		require.Equal(t, http.StatusFound, rec.Code)

		page, err := h.store.Posts.List(ctx, postFilterAll(), 1, 0)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "with picture", page[0].Text)
		require.True(t, page[0].HasImage())

		obj, err := h.media.Open(ctx, page[0].Image)
		require.NoError(t, err)
		assert.Equal(t, "image/png", obj.ContentType)
	})

	t.Run("non-image upload", func(t *testing.T) {
		req := multipartRequest(t, "/new", map[string]string{"text": "fake"}, "notes.png", []byte("just text"))
		rec := h.do(req, leo)
		assert.Equal(t, http.StatusOK, rec.Code)
		form := h.renderer.data["form"].(*forms.PostForm)
		assert.Equal(t, []string{forms.MsgInvalidImage}, form.Errors["image"])
	})
}

func TestShow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leo := h.addUser(t, "leo")
	ann := h.addUser(t, "ann")
	post := h.addPost(t, leo, "hello", nil)
	for i := 0; i < 6; i++ {
		h.addPost(t, leo, "more", nil)
	}
	require.NoError(t, h.store.Comments.Create(ctx, &models.Comment{PostID: &post.ID, AuthorID: ann.ID, Text: "nice"}))

	rec := h.get(postPath(post, "leo"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post", h.renderer.name)

	data := h.renderer.data
	for _, key := range []string{"post", "author", "items", "form", "page", "paginator"} {
		assert.Contains(t, data, key)
	}
	assert.Equal(t, post.ID, data["post"].(*models.Post).ID)
	assert.Equal(t, "leo", data["author"].(*models.User).Username)
	assert.Len(t, data["items"], 1)
	assert.Len(t, data["page"].(*pagination.Page[*models.Post]).Items, 5)

	t.Run("not found", func(t *testing.T) {
		paths := []string{
			postPath(post, "ann"),
			"/leo/9999",
			"/nobody/1",
		}
		for _, path := range paths {
			rec := h.get(path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
			assert.Equal(t, path, h.renderer.data["path"], path)
		}
	})
}

func TestEdit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leo := h.addUser(t, "leo")
	ann := h.addUser(t, "ann")
	post := h.addPost(t, leo, "original", nil)
	editPath := postPath(post, "leo") + "/edit"

	t.Run("anonymous is sent to login", func(t *testing.T) {
		rec := h.get(editPath, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login/?next="+editPath, rec.Header().Get("Location"))
	})

	t.Run("non-author is sent back", func(t *testing.T) {
		rec := h.post(editPath, url.Values{"text": {"hijacked"}}, ann)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, postPath(post, "leo"), rec.Header().Get("Location"))

		got, err := h.store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", got.Text)
	})

	t.Run("form has the post", func(t *testing.T) {
		rec := h.get(editPath, leo)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new_post", h.renderer.name)
		assert.Equal(t, post.ID, h.renderer.data["post"].(*models.Post).ID)
		assert.Equal(t, "original", h.renderer.data["form"].(*forms.PostForm).Text)
	})

	t.Run("author saves", func(t *testing.T) {
		rec := h.post(editPath, url.Values{"text": {"edited"}}, leo)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, postPath(post, "leo"), rec.Header().Get("Location"))

		got, err := h.store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Text)
		assert.True(t, got.PubDate.Equal(post.PubDate))
	})

	t.Run("invalid edit re-renders with post", func(t *testing.T) {
		rec := h.post(editPath, url.Values{"text": {""}}, leo)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new_post", h.renderer.name)
		assert.Contains(t, h.renderer.data, "post")
	})

	t.Run("image kept then cleared", func(t *testing.T) {
		req := multipartRequest(t, editPath, map[string]string{"text": "pic"}, "a.png", pngBytes(t))
		require.Equal(t, http.StatusFound, h.do(req, leo).Code)
		got, err := h.store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.True(t, got.HasImage())
		image := got.Image

		req = multipartRequest(t, editPath, map[string]string{"text": "still pic"}, "", nil)
		require.Equal(t, http.StatusFound, h.do(req, leo).Code)
		got, err = h.store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, image, got.Image)

		req = multipartRequest(t, editPath, map[string]string{"text": "no pic", "image-clear": "on"}, "", nil)
		require.Equal(t, http.StatusFound, h.do(req, leo).Code)
		got, err = h.store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.False(t, got.HasImage())
	})
}
