package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// Add inserts a new blog post into the database
func (r *BlogRepo) Add(ctx context.Context, blog *models.Blog) error {
	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		return errs.NewDatabaseError("create", "blog", err)
	}
	return nil
}

// FindByID returns a blog post by its ID
func (r *BlogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&blog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	return &blog, nil
}

// FindByOwner returns the user's blog posts, newest first
func (r *BlogRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&blogs).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "blogs", err)
	}
	return blogs, nil
}

// FindAll returns all blog posts from the database, newest first
func (r *BlogRepo) FindAll(ctx context.Context) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&blogs).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "blogs", err)
	}
	return blogs, nil
}

// Update replaces the fields present in patch and returns the stored result.
func (r *BlogRepo) Update(ctx context.Context, id uuid.UUID, patch models.BlogPatch) (*models.Blog, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, errs.NewDatabaseError("update", "blog", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.NewNotFound("blog")
	}
	return r.FindByID(ctx, id)
}

// Delete removes a blog post from the database by id
func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Blog{})
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "blog", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("blog")
	}
	return nil
}

// ImageURLsByOwner lists the non-empty image URLs attached to the user's posts.
func (r *BlogRepo) ImageURLsByOwner(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("user_id = ? AND image_url IS NOT NULL AND image_url <> ''", userID).
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list images of", "blogs", err)
	}
	return urls, nil
}

// DeleteByOwner removes every post owned by the user and returns how many went.
func (r *BlogRepo) DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Blog{})
	if res.Error != nil {
		return 0, errs.NewDatabaseError("delete", "blogs", res.Error)
	}
	return res.RowsAffected, nil
}
