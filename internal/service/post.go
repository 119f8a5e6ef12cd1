package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/devconnector/internal/domain"
)

// PostService handles posts and their likes and comments.
type PostService struct {
	store  domain.DocumentStore
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(store domain.DocumentStore, logger *slog.Logger) *PostService {
	return &PostService{store: store, logger: logger}
}

// Create publishes a post by actorID, snapshotting the author's name and avatar.
func (s *PostService) Create(ctx context.Context, actorID, text string) (*domain.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}

	author, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:       uuid.NewString(),
		User:     actorID,
		Text:     text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []domain.Like{},
		Comments: []domain.Comment{},
		Date:     time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, domain.CollectionPosts, post); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	posts := []domain.Post{}
	if err := s.store.Find(ctx, domain.CollectionPosts, nil, "date", &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var post domain.Post
	if err := s.store.FindByID(ctx, domain.CollectionPosts, postID, &post); err != nil {
		return nil, postErr("find post", err)
	}
	return &post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if !AuthorizeOwner(actorID, post.User) {
		return fmt.Errorf("%w: not the post author", domain.ErrForbidden)
	}

	if err := s.store.DeleteByID(ctx, domain.CollectionPosts, postID); err != nil {
		return postErr("delete post", err)
	}
	s.logger.Info("post deleted", "post", postID, "user", actorID)
	return nil
}

// Like records actorID's like at the front of the post's likes. Liking a
// post twice is a conflict, not a no-op.
func (s *PostService) Like(ctx context.Context, actorID, postID string) ([]domain.Like, error) {
	var post domain.Post
	err := s.store.AppendToSubcollection(ctx, domain.CollectionPosts, postID, "likes",
		domain.Like{User: actorID},
		domain.AppendOptions{AtFront: true, Unless: &domain.Match{Field: "user", Value: actorID}},
		&post)
	if err != nil {
		if errors.Is(err, domain.ErrElementExists) {
			return nil, fmt.Errorf("%w: post already liked", domain.ErrConflict)
		}
		return nil, postErr("like post", err)
	}
	return post.Likes, nil
}

// Unlike removes actorID's like. Unliking a post that was not liked is a conflict.
func (s *PostService) Unlike(ctx context.Context, actorID, postID string) ([]domain.Like, error) {
	var post domain.Post
	err := s.store.RemoveFromSubcollection(ctx, domain.CollectionPosts, postID, "likes",
		domain.Match{Field: "user", Value: actorID}, &post)
	if err != nil {
		if errors.Is(err, domain.ErrElementNotFound) {
			return nil, fmt.Errorf("%w: post has not yet been liked", domain.ErrConflict)
		}
		return nil, postErr("unlike post", err)
	}
	return post.Likes, nil
}

// AddComment inserts a comment by actorID at the front of the post's comments.
func (s *PostService) AddComment(ctx context.Context, actorID, postID, text string) ([]domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}

	author, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment := domain.Comment{
		ID:     uuid.NewString(),
		User:   actorID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   time.Now().UTC(),
	}

	var post domain.Post
	err = s.store.AppendToSubcollection(ctx, domain.CollectionPosts, postID, "comments", comment,
		domain.AppendOptions{AtFront: true}, &post)
	if err != nil {
		return nil, postErr("add comment", err)
	}
	return post.Comments, nil
}

// RemoveComment deletes the comment with commentID. Only the comment's
// author may delete it; the post's author has no override.
func (s *PostService) RemoveComment(ctx context.Context, actorID, postID, commentID string) ([]domain.Comment, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	var comment *domain.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment does not exist", domain.ErrNotFound)
	}
	if !AuthorizeOwner(actorID, comment.User) {
		return nil, fmt.Errorf("%w: not the comment author", domain.ErrForbidden)
	}

	var updated domain.Post
	err = s.store.RemoveFromSubcollection(ctx, domain.CollectionPosts, postID, "comments",
		domain.Match{Field: "id", Value: commentID}, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrElementNotFound) {
			return nil, fmt.Errorf("%w: comment does not exist", domain.ErrNotFound)
		}
		return nil, postErr("remove comment", err)
	}
	return updated.Comments, nil
}

func (s *PostService) user(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.store.FindByID(ctx, domain.CollectionUsers, id, &u); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func postErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: post", domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
