package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// Add inserts a new user. A duplicate email yields a 409.
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errs.NewDatabaseError("create", "user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *UserRepo) FindNonAdmins(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "users", err)
	}
	return users, nil
}

func (r *UserRepo) PromoteToAdmin(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var epoch int
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Raw(
		"UPDATE users SET role = ?, token_epoch = token_epoch + 1, updated_at = ? WHERE id = ? AND role <> ? RETURNING token_epoch",
		models.RoleAdmin, time.Now().UTC(), id, models.RoleAdmin,
	).Row().Scan(&epoch)
	if err == nil {
		return epoch, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, errs.NewDatabaseError("promote", "user", err)
	}

	// Nothing changed: either already admin or no such user.
	epoch, err = r.TokenEpoch(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return epoch, false, nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "user", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("user")
	}
	return nil
}

func (r *UserRepo) TokenEpoch(ctx context.Context, id uuid.UUID) (int, error) {
	var epoch int
	// Revocation checks must not read a lagging replica.
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Raw("SELECT token_epoch FROM users WHERE id = ?", id).Row().Scan(&epoch)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.NewNotFound("user")
	}
	if err != nil {
		return 0, errs.NewDatabaseError("read token epoch of", "user", err)
	}
	return epoch, nil
}

func (r *UserRepo) mapFindErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound("user")
	}
	return errs.NewDatabaseError("find", "user", err)
}
