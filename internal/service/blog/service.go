package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/domain"
	"github.com/inkwell/inkwell/internal/repository"
)

var (
	// ErrValidation is wrapped by all input validation failures.
	ErrValidation = errors.New("invalid input")
	// ErrNotOwner indicates the requester does not own the post.
	ErrNotOwner = errors.New("requester is not the post author")
)

// Service implements the post lifecycle with ownership-gated mutation.
type Service struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(posts repository.PostRepository, logger *slog.Logger) Service {
	return Service{posts: posts, logger: logger}
}

// Create publishes a new post owned by authorID.
func (s Service) Create(ctx context.Context, authorID, title, content string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		Likes:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("post created", "post_id", post.ID, "author_id", authorID)
	return s.posts.GetPostByID(ctx, post.ID)
}

// ListAll returns every post newest-created-first.
func (s Service) ListAll(ctx context.Context) ([]domain.Post, error) {
	return s.posts.ListPosts(ctx)
}

// GetByID returns a single post with author and comment authors resolved.
func (s Service) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

// Edit applies a partial update. Only the post author may edit; fields
// absent from the patch are left unchanged.
func (s Service) Edit(ctx context.Context, id, requesterID string, patch domain.PostPatch) (*domain.Post, error) {
	patch = normalizePatch(patch)
	if patch.Title == nil && patch.Content == nil {
		return nil, fmt.Errorf("%w: at least one of title or content is required", ErrValidation)
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, ErrNotOwner
	}
	if err := s.posts.UpdatePost(ctx, id, patch); err != nil {
		return nil, err
	}
	s.logger.Info("post updated", "post_id", id, "author_id", requesterID)
	return s.posts.GetPostByID(ctx, id)
}

// Delete removes a post permanently. Only the post author may delete;
// comments are removed with it.
func (s Service) Delete(ctx context.Context, id, requesterID string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return ErrNotOwner
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", id, "author_id", requesterID)
	return nil
}

// AddComment appends a comment to a post and returns the refreshed post.
func (s Service) AddComment(ctx context.Context, postID, userID, text string) (*domain.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment added", "post_id", postID, "user_id", userID)
	return s.posts.GetPostByID(ctx, postID)
}

// Like increments the post's like counter and returns the new count.
func (s Service) Like(ctx context.Context, postID string) (int, error) {
	return s.posts.IncrementLikes(ctx, postID)
}

func validateTitle(title string) error {
	if len(title) > 200 {
		return fmt.Errorf("%w: title must be at most 200 characters", ErrValidation)
	}
	return nil
}

// normalizePatch treats empty strings as absent fields, matching the
// partial-update contract.
func normalizePatch(patch domain.PostPatch) domain.PostPatch {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		patch.Title = nil
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		patch.Content = nil
	}
	return patch
}
