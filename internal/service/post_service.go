package service

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"go-discussion-board/internal/model"
	"go-discussion-board/pkg/apierror"
)

const minTitleLength = 5

// PostStore is the persistence surface the post service needs.
type PostStore interface {
	Create(ctx context.Context, authorID int64, title string, content string, category *string) (model.Post, error)
	FindByID(ctx context.Context, id int64) (model.Post, error)
	GetWithDetails(ctx context.Context, id int64) (model.Post, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error)
	Update(ctx context.Context, id int64, title string, content string, category *string) error
	Delete(ctx context.Context, id int64) error
}

type PostService struct {
	posts PostStore
}

func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts}
}

// Create inserts a post for the authenticated author. The author id always
// comes from the verified identity, never from the request body.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.CreatePostRequest) (model.Post, error) {
	title, content, err := validatePostFields(req.Title, req.Content)
	if err != nil {
		return model.Post{}, err
	}

	return s.posts.Create(ctx, authorID, title, content, normalizeCategory(req.Category))
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	return s.posts.ListAll(ctx)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

func (s *PostService) Get(ctx context.Context, id int64) (model.Post, error) {
	return s.posts.GetWithDetails(ctx, id)
}

// Update applies a patch to a post after verifying the actor owns it. The
// not-found check runs before the ownership check so a missing post is a 404,
// not a 403.
func (s *PostService) Update(ctx context.Context, id int64, actorID int64, req model.UpdatePostRequest) (model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}

	if post.AuthorID != actorID {
		return model.Post{}, apierror.New("FORBIDDEN",
			"you can only edit your own posts", "", http.StatusForbidden)
	}

	title, content, err := validatePostFields(req.Title, req.Content)
	if err != nil {
		return model.Post{}, err
	}

	if err := s.posts.Update(ctx, id, title, content, normalizeCategory(req.Category)); err != nil {
		return model.Post{}, err
	}

	return s.posts.GetWithDetails(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, id int64, actorID int64) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != actorID {
		return apierror.New("FORBIDDEN",
			"you can only delete your own posts", "", http.StatusForbidden)
	}

	// Comments cascade at the schema level.
	return s.posts.Delete(ctx, id)
}

func validatePostFields(title string, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if utf8.RuneCountInString(title) < minTitleLength {
		return "", "", apierror.New("BAD_REQUEST",
			"title must be at least 5 characters", "title", http.StatusBadRequest)
	}

	if content == "" {
		return "", "", apierror.New("BAD_REQUEST",
			"content is required", "content", http.StatusBadRequest)
	}

	return title, content, nil
}

// normalizeCategory maps the empty string to null so "no category" is stored
// one way only.
func normalizeCategory(category string) *string {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	return &category
}
