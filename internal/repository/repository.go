package repository

import (
	"context"

	"github.com/inkwell/inkwell/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// PostRepository persists stories and their embedded comments.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	// GetPostByID resolves author display fields and comments.
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	// ListPosts returns all posts newest-created-first with authors
	// resolved. Comments are not loaded on list reads.
	ListPosts(ctx context.Context) ([]domain.Post, error)
	UpdatePost(ctx context.Context, id string, patch domain.PostPatch) error
	DeletePost(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *domain.Comment) error
	IncrementLikes(ctx context.Context, id string) (int, error)
}
