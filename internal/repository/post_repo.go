package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-discussion-board/internal/model"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, authorID int64, title string, content string, category *string) (model.Post, error) {
	var p model.Post
	err := r.pool.QueryRow(ctx,
		`WITH inserted AS (
		     INSERT INTO posts (title, content, category, author_id)
		     VALUES ($1, $2, $3, $4)
		     RETURNING id, title, content, category, author_id, created_at
		 )
		 SELECT i.id, i.title, i.content, i.category, i.author_id, i.created_at,
		        u.id, u.username, u.avatar_url
		 FROM inserted i
		 JOIN users u ON u.id = i.author_id`,
		title, content, category, authorID).
		Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.AuthorID, &p.CreatedAt,
			&p.Author.ID, &p.Author.Username, &p.Author.AvatarURL)
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	p.Comments = make([]model.Comment, 0)
	return p, nil
}

// FindByID fetches the bare post row, without author or comments. This is
// what the ownership checks read.
func (r *PostRepository) FindByID(ctx context.Context, id int64) (model.Post, error) {
	var p model.Post
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, content, category, author_id, created_at
		 FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.AuthorID, &p.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

func (r *PostRepository) GetWithDetails(ctx context.Context, id int64) (model.Post, error) {
	var p model.Post
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.title, p.content, p.category, p.author_id, p.created_at,
		        u.id, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.AuthorID, &p.CreatedAt,
			&p.Author.ID, &p.Author.Username, &p.Author.AvatarURL)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}

	byPost, err := r.commentsForPosts(ctx, []int64{p.ID})
	if err != nil {
		return model.Post{}, err
	}
	p.Comments = byPost[p.ID]
	if p.Comments == nil {
		p.Comments = make([]model.Comment, 0)
	}
	return p, nil
}

// ListAll returns every post newest-first, each with its author summary and
// comments. Equal timestamps fall back to id so the order is stable.
func (r *PostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.content, p.category, p.author_id, p.created_at,
		        u.id, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.content, p.category, p.author_id, p.created_at,
		        u.id, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.author_id = $1
		 ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

func (r *PostRepository) Update(ctx context.Context, id int64, title string, content string, category *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET title = $2, content = $3, category = $4 WHERE id = $1`,
		id, title, content, category)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.AuthorID, &p.CreatedAt,
			&p.Author.ID, &p.Author.Username, &p.Author.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Comments = make([]model.Comment, 0)
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return posts, nil
	}

	byPost, err := r.commentsForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if comments, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = comments
		}
	}
	return posts, nil
}

// commentsForPosts loads the comments for a set of posts in one query,
// oldest-first within each post.
func (r *PostRepository) commentsForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.content, c.post_id, c.author_id, c.created_at,
		        u.id, u.username, u.avatar_url
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ANY($1)
		 ORDER BY c.created_at ASC, c.id ASC`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	byPost := make(map[int64][]model.Comment)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	return byPost, rows.Err()
}
