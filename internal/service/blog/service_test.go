package blog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/inkwell/inkwell/internal/domain"
	"github.com/inkwell/inkwell/internal/repository"
)

// stubPostRepository keeps posts in insertion order and reverses on
// list, matching the newest-created-first contract.
type stubPostRepository struct {
	order    []string
	posts    map[string]*domain.Post
	comments map[string][]domain.Comment
}

func newStubPostRepository() *stubPostRepository {
	return &stubPostRepository{
		posts:    make(map[string]*domain.Post),
		comments: make(map[string][]domain.Comment),
	}
}

func (s *stubPostRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	copied := *post
	s.posts[post.ID] = &copied
	s.order = append(s.order, post.ID)
	return nil
}

func (s *stubPostRepository) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *post
	copied.Author = domain.Author{ID: post.AuthorID}
	copied.Comments = append([]domain.Comment{}, s.comments[id]...)
	return &copied, nil
}

func (s *stubPostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		post := *s.posts[s.order[i]]
		post.Author = domain.Author{ID: post.AuthorID}
		post.Comments = []domain.Comment{}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *stubPostRepository) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) error {
	post, ok := s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	post.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *stubPostRepository) DeletePost(ctx context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.comments, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *stubPostRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if _, ok := s.posts[comment.PostID]; !ok {
		return repository.ErrNotFound
	}
	copied := *comment
	copied.Author = domain.Author{ID: comment.UserID}
	s.comments[comment.PostID] = append(s.comments[comment.PostID], copied)
	return nil
}

func (s *stubPostRepository) IncrementLikes(ctx context.Context, id string) (int, error) {
	post, ok := s.posts[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	post.Likes++
	return post.Likes, nil
}

func newTestService() (Service, *stubPostRepository) {
	repo := newStubPostRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, log), repo
}

func strPtr(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "Hi!", "World")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.Likes != 0 {
		t.Fatalf("expected zero likes, got %d", post.Likes)
	}
	if len(post.Comments) != 0 {
		t.Fatalf("expected no comments, got %d", len(post.Comments))
	}
	if post.AuthorID != "user-a" {
		t.Fatalf("unexpected author: %q", post.AuthorID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name           string
		title, content string
	}{
		{"empty title", "", "content"},
		{"empty content", "A valid title", ""},
		{"blank title", "   ", "content"},
		{"long title", strings.Repeat("x", 201), "content"},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), "user-a", tc.title, tc.content); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestListAllNewestFirst(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), "user-a", "First story", "one")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := svc.Create(context.Background(), "user-a", "Second story", "two")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	posts, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatalf("expected newest-first order, got [%q, %q]", posts[0].ID, posts[1].ID)
	}
}

func TestEditOwnershipGate(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "A story", "content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Edit(context.Background(), post.ID, "user-b", domain.PostPatch{Title: strPtr("Hijacked")}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign edit, got %v", err)
	}
	if err := svc.Delete(context.Background(), post.ID, "user-b"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign delete, got %v", err)
	}

	updated, err := svc.Edit(context.Background(), post.ID, "user-a", domain.PostPatch{Title: strPtr("New title")})
	if err != nil {
		t.Fatalf("owner edit returned error: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("unexpected title: %q", updated.Title)
	}
	if err := svc.Delete(context.Background(), post.ID, "user-a"); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
}

func TestEditPartialUpdate(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "Original title", "original content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Edit(context.Background(), post.ID, "user-a", domain.PostPatch{Title: strPtr("Changed title")})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if updated.Content != "original content" {
		t.Fatalf("content changed on title-only patch: %q", updated.Content)
	}

	updated, err = svc.Edit(context.Background(), post.ID, "user-a", domain.PostPatch{Content: strPtr("changed content")})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if updated.Title != "Changed title" {
		t.Fatalf("title changed on content-only patch: %q", updated.Title)
	}
}

func TestEditEmptyPatch(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "A story", "content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Edit(context.Background(), post.ID, "user-a", domain.PostPatch{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty patch, got %v", err)
	}
	if _, err := svc.Edit(context.Background(), post.ID, "user-a", domain.PostPatch{Title: strPtr("  ")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank patch, got %v", err)
	}
}

func TestEditUnknownPost(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Edit(context.Background(), "missing", "user-a", domain.PostPatch{Title: strPtr("Title")}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "missing", "user-a"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsPermanent(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "A story", "content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), post.ID, "user-a"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), post.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "A story", "content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.AddComment(context.Background(), post.ID, "user-b", "first!"); err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	refreshed, err := svc.AddComment(context.Background(), post.ID, "user-c", "second")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}

	if len(refreshed.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(refreshed.Comments))
	}
	if refreshed.Comments[0].Text != "first!" || refreshed.Comments[1].Text != "second" {
		t.Fatalf("comments out of order: %+v", refreshed.Comments)
	}

	if _, err := svc.AddComment(context.Background(), post.ID, "user-b", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank comment, got %v", err)
	}
}

func TestLikeIncrements(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-a", "A story", "content")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for want := 1; want <= 3; want++ {
		likes, err := svc.Like(context.Background(), post.ID)
		if err != nil {
			t.Fatalf("Like returned error: %v", err)
		}
		if likes != want {
			t.Fatalf("expected %d likes, got %d", want, likes)
		}
	}

	if _, err := svc.Like(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
