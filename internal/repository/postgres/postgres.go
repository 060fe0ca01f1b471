package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell/inkwell/internal/domain"
	"github.com/inkwell/inkwell/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.PostRepository = (*Repository)(nil)
)

// CreateUser inserts a user. A duplicate email or provider id maps to
// repository.ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, fullname, email, password_hash, google_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var googleID *string
	if user.GoogleID != "" {
		googleID = &user.GoogleID
	}
	_, err := r.pool.Exec(ctx, query, user.ID, user.Fullname, user.Email, user.PasswordHash, googleID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, fullname, email, password_hash, google_id, created_at, updated_at
		FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID fetches a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, fullname, email, password_hash, google_id, created_at, updated_at
		FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var googleID *string
	if err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &googleID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if googleID != nil {
		u.GoogleID = *googleID
	}
	return &u, nil
}

// CreatePost inserts a post.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	const query = `INSERT INTO posts (id, title, content, author_id, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, post.ID, post.Title, post.Content, post.AuthorID, post.Likes, post.CreatedAt, post.UpdatedAt)
	return err
}

// postColumns joins posts with their author for display-field resolution.
// The join is LEFT because deleting a user orphans their posts.
const postColumns = `p.id, p.title, p.content, p.author_id, p.likes, p.created_at, p.updated_at,
	COALESCE(u.fullname, ''), COALESCE(u.email, '')`

// GetPostByID fetches a post with author and comment authors resolved.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p LEFT JOIN users u ON u.id = p.author_id WHERE p.id = $1`, postColumns)
	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	comments, err := r.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

// ListPosts returns all posts newest-created-first with authors resolved.
func (r *Repository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p LEFT JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC`, postColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		post.Comments = []domain.Comment{}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Fullname, &p.Author.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return &p, nil
}

func (r *Repository) listComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	const query = `SELECT c.id, c.post_id, c.user_id, c.body, c.created_at,
		COALESCE(u.fullname, ''), COALESCE(u.email, '')
		FROM comments c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1 ORDER BY c.created_at, c.id`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt,
			&c.Author.Fullname, &c.Author.Email); err != nil {
			return nil, err
		}
		c.Author.ID = c.UserID
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdatePost applies a partial update field by field.
func (r *Repository) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) error {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeletePost removes a post permanently. Comments cascade with it.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddComment appends a comment to a post. A missing post surfaces as
// repository.ErrNotFound via the foreign key.
func (r *Repository) AddComment(ctx context.Context, comment *domain.Comment) error {
	const query = `INSERT INTO comments (id, post_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, comment.ID, comment.PostID, comment.UserID, comment.Text, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// IncrementLikes bumps the like counter and returns the new value.
func (r *Repository) IncrementLikes(ctx context.Context, id string) (int, error) {
	var likes int
	err := r.pool.QueryRow(ctx, `UPDATE posts SET likes = likes + 1, updated_at = $2 WHERE id = $1 RETURNING likes`,
		id, time.Now().UTC()).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

// Ping verifies database connectivity for health reporting.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
