package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blog-platform-backend/models"
)

// UserRepository is the User Directory's storage contract.
type UserRepository interface {
	Add(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindNonAdmins returns every user with role user, newest first.
	FindNonAdmins(ctx context.Context) ([]*models.User, error)
	// PromoteToAdmin returns the stored token epoch and whether the role
	// actually changed. Promotion bumps the epoch so tokens carrying the old
	// role stop working.
	PromoteToAdmin(ctx context.Context, id uuid.UUID) (epoch int, changed bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
	TokenEpoch(ctx context.Context, id uuid.UUID) (int, error)
}

// BlogRepository is the Blog Store's storage contract. Lists are newest first.
type BlogRepository interface {
	Add(ctx context.Context, blog *models.Blog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Blog, error)
	FindAll(ctx context.Context) ([]*models.Blog, error)
	Update(ctx context.Context, id uuid.UUID, patch models.BlogPatch) (*models.Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ImageURLsByOwner(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Database struct {
	userRepo UserRepository
	blogRepo BlogRepository
	ping     func(ctx context.Context) error
	close    func() error
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo: NewUserRepo(db),
		blogRepo: NewBlogRepo(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMemory returns a Database backed by process memory. Nothing survives a restart.
func NewMemory() Database {
	store := newMemoryStore()
	return Database{
		userRepo: &MemoryUserRepo{store: store},
		blogRepo: &MemoryBlogRepo{store: store},
		ping:     func(context.Context) error { return nil },
		close:    func() error { return nil },
	}
}

func (d Database) UserRepo() UserRepository {
	return d.userRepo
}

func (d Database) BlogRepo() BlogRepository {
	return d.blogRepo
}

// Ping checks that the backing store answers.
func (d Database) Ping(ctx context.Context) error {
	if d.ping == nil {
		return errors.New("database not initialised")
	}
	return d.ping(ctx)
}

func (d Database) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

type OpenOptions struct {
	DSN         string
	ReplicaDSNs []string
	// SlowThreshold marks queries logged as slow.
	SlowThreshold time.Duration
}

// Open connects to Postgres. Replica DSNs, when given, serve reads through dbresolver.
func Open(ctx context.Context, opts OpenOptions) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = 10 * time.Second
	}

	gormLogger := logger.New(
		zerologWriter{},
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if len(opts.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(opts.ReplicaDSNs))
		for _, dsn := range opts.ReplicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
		log.Info().Int("replicas", len(replicas)).Msg("read replicas registered")
	}

	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// zerologWriter routes gorm's logger into the global zerolog logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}
