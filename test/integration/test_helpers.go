//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-discussion-board/internal/config"
	"go-discussion-board/internal/handler"
	"go-discussion-board/internal/middleware"
	"go-discussion-board/internal/model"
	"go-discussion-board/internal/router"
	"go-discussion-board/internal/service"
	"go-discussion-board/internal/token"
)

// memStore is an in-memory stand-in for the Postgres repositories with the
// same constraint behavior: unique usernames, author references, cascade
// delete of comments with their post.
type memStore struct {
	mu          sync.Mutex
	nextUser    int64
	nextPost    int64
	nextComment int64
	users       map[int64]model.User
	posts       map[int64]model.Post
	comments    []model.Comment
}

func newMemStore() *memStore {
	return &memStore{
		nextUser: 1,
		nextPost: 1, nextComment: 1,
		users: map[int64]model.User{},
		posts: map[int64]model.Post{},
	}
}

func (s *memStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) Create(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}

	u := model.User{ID: s.nextUser, Username: username, CreatedAt: time.Now().UTC()}
	s.users[u.ID] = u
	s.nextUser++
	return u, nil
}

func (s *memStore) UpdateAvatar(_ context.Context, id int64, avatarURL *string) (model.User, error) {
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

// DeleteUser removes a user and, like the schema cascade, their posts and
// comments. Used by tests to invalidate previously issued tokens.
func (s *memStore) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	for postID, p := range s.posts {
		if p.AuthorID == id {
			delete(s.posts, postID)
		}
	}
	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.AuthorID != id {
			if _, ok := s.posts[c.PostID]; ok {
				kept = append(kept, c)
			}
		}
	}
	s.comments = kept
}

func (s *memStore) CreatePost(_ context.Context, authorID int64, title string, content string, category *string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.Post{
		ID:        s.nextPost,
		Title:     title,
		Content:   content,
		Category:  category,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	s.posts[p.ID] = p
	s.nextPost++
	return s.decorateLocked(p), nil
}

func (s *memStore) FindPostByID(_ context.Context, id int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, model.ErrPostNotFound
	}
	return p, nil
}

func (s *memStore) GetPostWithDetails(_ context.Context, id int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, model.ErrPostNotFound
	}
	return s.decorateLocked(p), nil
}

func (s *memStore) ListAllPosts(_ context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(func(model.Post) bool { return true }), nil
}

func (s *memStore) ListPostsByAuthor(_ context.Context, authorID int64) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(func(p model.Post) bool { return p.AuthorID == authorID }), nil
}

func (s *memStore) UpdatePost(_ context.Context, id int64, title string, content string, category *string) error {
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

func (s *memStore) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(s.posts, id)

	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return nil
}

func (s *memStore) CreateComment(_ context.Context, authorID int64, postID int64, content string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return model.Comment{}, model.ErrPostNotFound
	}

	c := model.Comment{
		ID:        s.nextComment,
		Content:   content,
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if author, ok := s.users[authorID]; ok {
		c.Author = author.Summary()
	}
	s.comments = append(s.comments, c)
	s.nextComment++
	return c, nil
}

func (s *memStore) listLocked(keep func(model.Post) bool) []model.Post {
	out := make([]model.Post, 0)
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, s.decorateLocked(p))
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

func (s *memStore) decorateLocked(p model.Post) model.Post {
	if author, ok := s.users[p.AuthorID]; ok {
		p.Author = author.Summary()
	}

	p.Comments = make([]model.Comment, 0)
	for _, c := range s.comments {
		if c.PostID != p.ID {
			continue
		}
		if author, ok := s.users[c.AuthorID]; ok {
			c.Author = author.Summary()
		}
		p.Comments = append(p.Comments, c)
	}
	sort.Slice(p.Comments, func(i, j int) bool {
		if !p.Comments[i].CreatedAt.Equal(p.Comments[j].CreatedAt) {
			return p.Comments[i].CreatedAt.Before(p.Comments[j].CreatedAt)
		}
		return p.Comments[i].ID < p.Comments[j].ID
	})
	return p
}

// Adapters so one memStore satisfies the three store interfaces, which use
// shorter method names than the store's combined surface.

type postStoreAdapter struct{ s *memStore }

func (a postStoreAdapter) Create(ctx context.Context, authorID int64, title string, content string, category *string) (model.Post, error) {
	return a.s.CreatePost(ctx, authorID, title, content, category)
}
func (a postStoreAdapter) FindByID(ctx context.Context, id int64) (model.Post, error) {
	return a.s.FindPostByID(ctx, id)
}
func (a postStoreAdapter) GetWithDetails(ctx context.Context, id int64) (model.Post, error) {
	return a.s.GetPostWithDetails(ctx, id)
}
func (a postStoreAdapter) ListAll(ctx context.Context) ([]model.Post, error) {
	return a.s.ListAllPosts(ctx)
}
func (a postStoreAdapter) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	return a.s.ListPostsByAuthor(ctx, authorID)
}
func (a postStoreAdapter) Update(ctx context.Context, id int64, title string, content string, category *string) error {
	return a.s.UpdatePost(ctx, id, title, content, category)
}
func (a postStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.s.DeletePost(ctx, id)
}

type commentStoreAdapter struct{ s *memStore }

func (a commentStoreAdapter) Create(ctx context.Context, authorID int64, postID int64, content string) (model.Comment, error) {
	return a.s.CreateComment(ctx, authorID, postID, content)
}

func newServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()

	issuer, err := token.New("test-secret", 15*time.Minute)
	require.NoError(t, err)

	authService := service.NewAuthService(store, issuer)
	postService := service.NewPostService(postStoreAdapter{s: store})
	commentService := service.NewCommentService(commentStoreAdapter{s: store}, postStoreAdapter{s: store})

	cfg := &config.Config{
		ServerPort:     "8080",
		RequestTimeout: 30 * time.Second,
		JWTSecret:      "test-secret",
		JWTAccessTTL:   15 * time.Minute,
		CORSOrigins:    []string{"*"},
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(authService),
		Post:    handler.NewPostHandler(postService),
		Comment: handler.NewCommentHandler(commentService),
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server, store
}

type sessionData struct {
	User struct {
		ID        int64   `json:"id"`
		Username  string  `json:"username"`
		AvatarURL *string `json:"avatarUrl"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func register(t *testing.T, server *httptest.Server, username string) sessionData {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "", map[string]string{"username": username})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool        `json:"success"`
		Data    sessionData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Data.AccessToken)
	return parsed.Data
}

func doJSON(t *testing.T, method string, url string, accessToken string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}
