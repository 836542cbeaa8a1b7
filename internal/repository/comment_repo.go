package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-discussion-board/internal/model"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// Create inserts a comment and returns it with the author summary attached.
// The service checks the post exists first; the foreign key backstops the
// window where the post is deleted between check and insert.
func (r *CommentRepository) Create(ctx context.Context, authorID int64, postID int64, content string) (model.Comment, error) {
	var c model.Comment
	err := r.pool.QueryRow(ctx,
		`WITH inserted AS (
		     INSERT INTO comments (content, post_id, author_id)
		     VALUES ($1, $2, $3)
		     RETURNING id, content, post_id, author_id, created_at
		 )
		 SELECT i.id, i.content, i.post_id, i.author_id, i.created_at,
		        u.id, u.username, u.avatar_url
		 FROM inserted i
		 JOIN users u ON u.id = i.author_id`,
		content, postID, authorID).
		Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.AvatarURL)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return model.Comment{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}
