package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

type NewBlog struct {
	Title   string
	Content string
	Image   *ImageFile
}

// BlogChanges replaces only the non-nil fields.
type BlogChanges struct {
	Title   *string
	Content *string
	Image   *ImageFile
}

type BlogService struct {
	blogs    database.BlogRepository
	owners   ownerLookup
	uploader ImageUploader
	janitor  ImageDiscarder
}

func NewBlogService(blogs database.BlogRepository, owners ownerLookup, uploader ImageUploader, janitor ImageDiscarder) *BlogService {
	return &BlogService{blogs: blogs, owners: owners, uploader: uploader, janitor: janitor}
}

// Create stores a blog owned by ownerID. Only that user or an admin may do so.
func (s *BlogService) Create(ctx context.Context, caller auth.Identity, ownerID uuid.UUID, in NewBlog) (*models.Blog, error) {
	if !canActFor(caller, ownerID) {
		return nil, errs.NewNotOwnerError("blog")
	}

	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" {
		return nil, errs.NewMissingRequiredFieldError("title")
	}
	if content == "" {
		return nil, errs.NewMissingRequiredFieldError("content")
	}

	// An admin may name any owner; the owner must exist in every backend.
	if _, err := s.owners.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	blog := &models.Blog{Title: title, Content: content, UserID: ownerID}
	if in.Image != nil {
		url, err := s.uploader.Upload(ctx, in.Image.Body, in.Image.Name)
		if err != nil {
			return nil, err
		}
		blog.ImageURL = &url
	}

	if err := s.blogs.Add(ctx, blog); err != nil {
		if blog.ImageURL != nil {
			s.discard(*blog.ImageURL)
		}
		return nil, err
	}

	log.Info().Str("blogID", blog.ID.String()).Str("userID", ownerID.String()).Msg("blog created")
	return blog, nil
}

// ListByOwner returns ownerID's blogs, newest first. Only that user or an admin may list them.
func (s *BlogService) ListByOwner(ctx context.Context, caller auth.Identity, ownerID uuid.UUID) ([]*models.Blog, error) {
	if !canActFor(caller, ownerID) {
		return nil, errs.NewNotOwnerError("blog")
	}
	return s.blogs.FindByOwner(ctx, ownerID)
}

func (s *BlogService) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	return s.blogs.FindByID(ctx, id)
}

func (s *BlogService) ListAll(ctx context.Context) ([]*models.Blog, error) {
	return s.blogs.FindAll(ctx)
}

// Update replaces the provided fields. A replaced image is discarded afterwards.
func (s *BlogService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, changes BlogChanges) (*models.Blog, error) {
	current, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canActFor(caller, current.UserID) {
		return nil, errs.NewNotOwnerError("blog")
	}

	var patch models.BlogPatch
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return nil, errs.NewInvalidFieldError("title", "must not be empty")
		}
		patch.Title = &title
	}
	if changes.Content != nil {
		content := strings.TrimSpace(*changes.Content)
		if content == "" {
			return nil, errs.NewInvalidFieldError("content", "must not be empty")
		}
		patch.Content = &content
	}
	if changes.Image != nil {
		url, err := s.uploader.Upload(ctx, changes.Image.Body, changes.Image.Name)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}

	updated, err := s.blogs.Update(ctx, id, patch)
	if err != nil {
		if patch.ImageURL != nil {
			s.discard(*patch.ImageURL)
		}
		return nil, err
	}

	if patch.ImageURL != nil && current.ImageURL != nil && *current.ImageURL != *patch.ImageURL {
		s.discard(*current.ImageURL)
	}
	return updated, nil
}

// Delete removes a blog its caller owns (or any blog, for admins).
func (s *BlogService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canActFor(caller, blog.UserID) {
		return errs.NewNotOwnerError("blog")
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}
	if blog.ImageURL != nil {
		s.discard(*blog.ImageURL)
	}

	log.Info().Str("blogID", id.String()).Msg("blog deleted")
	return nil
}

// DeleteAllByOwner removes every blog of ownerID together with its images.
func (s *BlogService) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	urls, err := s.blogs.ImageURLsByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	n, err := s.blogs.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	s.discard(urls...)
	return n, nil
}

func (s *BlogService) discard(urls ...string) {
	if s.janitor == nil || len(urls) == 0 {
		return
	}
	s.janitor.Discard(urls...)
}
