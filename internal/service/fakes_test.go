package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-discussion-board/internal/model"
)

// In-memory stores mirroring the constraint behavior of the Postgres
// repositories, so the services can be exercised without a database.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User

	// beforeCreate runs inside Create before the insert, to simulate a
	// concurrent registration winning the race.
	beforeCreate func(username string)
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[int64]model.User{}}
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByUsernameLocked(username)
}

func (s *fakeUserStore) Create(_ context.Context, username string) (model.User, error) {
	if s.beforeCreate != nil {
		s.beforeCreate(username)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findByUsernameLocked(username); err == nil {
		return model.User{}, model.ErrUserAlreadyExists
	}
	return s.insertLocked(username), nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id int64, avatarURL *string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.AvatarURL = avatarURL
	s.users[id] = u
	return u, nil
}

func (s *fakeUserStore) delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// insert adds a user directly, bypassing Create, as a concurrent writer would.
func (s *fakeUserStore) insert(username string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(username)
}

func (s *fakeUserStore) insertLocked(username string) model.User {
	u := model.User{ID: s.nextID, Username: username, CreatedAt: time.Now().UTC()}
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *fakeUserStore) findByUsernameLocked(username string) (model.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type fakePostStore struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]model.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{nextID: 1, posts: map[int64]model.Post{}}
}

func (s *fakePostStore) Create(_ context.Context, authorID int64, title string, content string, category *string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.Post{
		ID:        s.nextID,
		Title:     title,
		Content:   content,
		Category:  category,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
		Comments:  make([]model.Comment, 0),
	}
	s.posts[p.ID] = p
	s.nextID++
	return p, nil
}

func (s *fakePostStore) FindByID(_ context.Context, id int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, model.ErrPostNotFound
	}
	return p, nil
}

func (s *fakePostStore) GetWithDetails(ctx context.Context, id int64) (model.Post, error) {
	return s.FindByID(ctx, id)
}

func (s *fakePostStore) ListAll(_ context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(model.Post) bool { return true }), nil
}

func (s *fakePostStore) ListByAuthor(_ context.Context, authorID int64) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(p model.Post) bool { return p.AuthorID == authorID }), nil
}

func (s *fakePostStore) Update(_ context.Context, id int64, title string, content string, category *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Title = title
	p.Content = content
	p.Category = category
	s.posts[id] = p
	return nil
}

func (s *fakePostStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) sortedLocked(keep func(model.Post) bool) []model.Post {
	out := make([]model.Post, 0)
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type fakeCommentStore struct {
	mu       sync.Mutex
	nextID   int64
	comments []model.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{nextID: 1}
}

func (s *fakeCommentStore) Create(_ context.Context, authorID int64, postID int64, content string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.Comment{
		ID:        s.nextID,
		Content:   content,
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	s.comments = append(s.comments, c)
	s.nextID++
	return c, nil
}

func (s *fakeCommentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}
