package service

import (
	"context"
	"net/http"
	"strings"

	"go-discussion-board/internal/model"
	"go-discussion-board/pkg/apierror"
)

// CommentStore is the persistence surface the comment service needs.
type CommentStore interface {
	Create(ctx context.Context, authorID int64, postID int64, content string) (model.Comment, error)
}

type CommentService struct {
	comments CommentStore
	posts    PostStore
}

func NewCommentService(comments CommentStore, posts PostStore) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// Create adds a comment to an existing post. A dangling post id is a
// NotFound, verified here rather than left to the foreign key so the caller
// gets a 404 instead of a 500.
func (s *CommentService) Create(ctx context.Context, authorID int64, req model.CreateCommentRequest) (model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return model.Comment{}, apierror.New("BAD_REQUEST",
			"content is required", "content", http.StatusBadRequest)
	}

	if req.PostID <= 0 {
		return model.Comment{}, apierror.New("BAD_REQUEST",
			"postId is required", "postId", http.StatusBadRequest)
	}

	if _, err := s.posts.FindByID(ctx, req.PostID); err != nil {
		return model.Comment{}, err
	}

	return s.comments.Create(ctx, authorID, req.PostID, content)
}
