package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"postboard/app/models"
	"postboard/app/repositories"
)

type UserRepository struct {
	users  map[uint]*models.User
	nextID uint
	mutex  sync.RWMutex
}

type GroupRepository struct {
	groups map[uint]*models.Group
	nextID uint
	mutex  sync.RWMutex
}

type PostRepository struct {
	posts   map[uint]*models.Post
	nextID  uint
	mutex   sync.RWMutex
	users   *UserRepository
	groups  *GroupRepository
	follows *FollowRepository
}

type CommentRepository struct {
	comments map[uint]*models.Comment
	nextID   uint
	mutex    sync.RWMutex
	users    *UserRepository
}

type FollowRepository struct {
	edges map[[2]uint]*models.Follow
	mutex sync.RWMutex
}

// Store bundles mocks that resolve each other's relations the way the database would.
type Store struct {
	Users    *UserRepository
	Groups   *GroupRepository
	Posts    *PostRepository
	Comments *CommentRepository
	Follows  *FollowRepository
}

func NewStore() *Store {
	users := NewUserRepository()
	groups := NewGroupRepository()
	follows := NewFollowRepository()
	return &Store{
		Users:    users,
		Groups:   groups,
		Posts:    NewPostRepository(users, groups, follows),
		Comments: NewCommentRepository(users),
		Follows:  follows,
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: make(map[uint]*models.Group), nextID: 1}
}

func NewPostRepository(users *UserRepository, groups *GroupRepository, follows *FollowRepository) *PostRepository {
	return &PostRepository{
		posts:   make(map[uint]*models.Post),
		nextID:  1,
		users:   users,
		groups:  groups,
		follows: follows,
	}
}

func NewCommentRepository(users *UserRepository) *CommentRepository {
	return &CommentRepository{comments: make(map[uint]*models.Comment), nextID: 1, users: users}
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[[2]uint]*models.Follow)}
}

// UserRepository implementation
func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %s", repositories.ErrDuplicate, user.Username)
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Delete(ctx context.Context, id uint) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// GroupRepository implementation
func (m *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, g := range m.groups {
		if g.Slug == group.Slug {
			return fmt.Errorf("%w: slug %s", repositories.ErrDuplicate, group.Slug)
		}
	}
	group.ID = m.nextID
	m.nextID++
	m.groups[group.ID] = group
	return nil
}

func (m *GroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return group, nil
}

func (m *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, g := range m.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	groups := make([]*models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Title != groups[j].Title {
			return groups[i].Title < groups[j].Title
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (m *GroupRepository) Delete(ctx context.Context, id uint) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := post.BeforeCreate(nil); err != nil {
		return err
	}
	post.ID = m.nextID
	m.nextID++
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return m.hydrate(ctx, post), nil
}

func (m *PostRepository) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	post, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author == nil || post.Author.Username != username {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) List(ctx context.Context, filter repositories.PostFilter, limit, offset int) ([]*models.Post, error) {
	matched := m.matching(ctx, filter)
	if offset >= len(matched) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *PostRepository) Count(ctx context.Context, filter repositories.PostFilter) (int64, error) {
	return int64(len(m.matching(ctx, filter))), nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stored, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id uint) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) matching(ctx context.Context, filter repositories.PostFilter) []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var posts []*models.Post
	for _, p := range m.posts {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		if filter.FollowerID != nil {
			if ok, _ := m.follows.Exists(ctx, *filter.FollowerID, p.AuthorID); !ok {
				continue
			}
		}
		posts = append(posts, m.hydrate(ctx, p))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PubDate.Equal(posts[j].PubDate) {
			return posts[i].PubDate.After(posts[j].PubDate)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

// hydrate returns a copy with Author and Group loaded.
func (m *PostRepository) hydrate(ctx context.Context, p *models.Post) *models.Post {
	post := *p
	if m.users != nil {
		post.Author, _ = m.users.GetByID(ctx, p.AuthorID)
	}
	post.Group = nil
	if m.groups != nil && p.GroupID != nil {
		post.Group, _ = m.groups.GetByID(ctx, *p.GroupID)
	}
	return &post
}

// CommentRepository implementation
func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := comment.BeforeCreate(nil); err != nil {
		return err
	}
	comment.ID = m.nextID
	m.nextID++
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *CommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return m.hydrate(ctx, comment), nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var comments []*models.Comment
	for _, c := range m.comments {
		if c.PostID != nil && *c.PostID == postID {
			comments = append(comments, m.hydrate(ctx, c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.After(comments[j].Created)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

func (m *CommentRepository) Delete(ctx context.Context, id uint) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) hydrate(ctx context.Context, c *models.Comment) *models.Comment {
	comment := *c
	if m.users != nil {
		comment.Author, _ = m.users.GetByID(ctx, c.AuthorID)
	}
	return &comment
}

// FollowRepository implementation
func (m *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := [2]uint{follow.UserID, follow.AuthorID}
	if _, exists := m.edges[key]; exists {
		return repositories.ErrDuplicate
	}
	stored := *follow
	m.edges[key] = &stored
	return nil
}

func (m *FollowRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, exists := m.edges[[2]uint{userID, authorID}]
	return exists, nil
}

func (m *FollowRepository) Delete(ctx context.Context, userID, authorID uint) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := [2]uint{userID, authorID}
	if _, exists := m.edges[key]; !exists {
		return 0, nil
	}
	delete(m.edges, key)
	return 1, nil
}

func (m *FollowRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var n int64
	for key := range m.edges {
		if key[1] == authorID {
			n++
		}
	}
	return n, nil
}

func (m *FollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var n int64
	for key := range m.edges {
		if key[0] == userID {
			n++
		}
	}
	return n, nil
}

// Len reports how many edges are stored.
func (m *FollowRepository) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.edges)
}

var (
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.GroupRepository   = (*GroupRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.FollowRepository  = (*FollowRepository)(nil)
)
