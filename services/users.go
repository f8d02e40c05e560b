package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/database"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

// bcrypt ignores input past 72 bytes; longer passwords are refused instead of truncated.
const maxPasswordBytes = 72

// blogPurger removes every blog a user owns.
type blogPurger interface {
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Session is the result of a successful register or login.
type Session struct {
	AccessToken string
	User        *models.User
}

type UserService struct {
	users  database.UserRepository
	blogs  blogPurger
	tokens TokenIssuer
	epochs EpochPublisher
}

// registration is the validated form of a register request.
type registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func NewUserService(users database.UserRepository, blogs blogPurger, tokens TokenIssuer, epochs EpochPublisher) *UserService {
	return &UserService{users: users, blogs: blogs, tokens: tokens, epochs: epochs}
}

// NormalizeEmail trims and lowercases an address; lookups and uniqueness use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with role user and returns a fresh token for it.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	in := registration{
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Password: password,
	}
	if err := validate.StructCtx(ctx, in); err != nil {
		return nil, validationError(err)
	}
	username, email = in.Username, in.Email

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, errs.NewConflictError("user with this email already exists")
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("could not register user", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errs.IsConflict(err) {
			return nil, errs.NewConflictError("user with this email already exists").WithCause(err)
		}
		return nil, err
	}

	log.Info().Str("userID", user.ID.String()).Msg("user registered")
	return s.newSession(user)
}

// Authenticate checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" || len(password) > maxPasswordBytes {
		return nil, errs.NewBadCredentialsError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			// Spend the same bcrypt work as a real comparison.
			_, _ = auth.CheckPassword(dummyHash(), password)
			return nil, errs.NewBadCredentialsError()
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("could not verify credentials", err)
	}
	if !ok {
		return nil, errs.NewBadCredentialsError()
	}

	return s.newSession(user)
}

func (s *UserService) ListNonAdmins(ctx context.Context) ([]*models.User, error) {
	return s.users.FindNonAdmins(ctx)
}

// PromoteToAdmin is idempotent. A real change revokes the user's outstanding tokens.
// The stored epoch is published on every call so a retry repairs a failed publish.
func (s *UserService) PromoteToAdmin(ctx context.Context, userID uuid.UUID) error {
	epoch, changed, err := s.users.PromoteToAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if changed {
		log.Info().Str("userID", userID.String()).Int("epoch", epoch).Msg("user promoted to admin")
	}
	if s.epochs == nil {
		return nil
	}
	if err := s.epochs.Advance(ctx, userID, epoch); err != nil {
		return errs.NewRevocationLaggedError(err)
	}
	return nil
}

// Delete removes the user's blogs, then the user.
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errs.IsNotFound(err) {
			// A retry after a failed publish lands here; publish again.
			if pubErr := s.publishRemoval(ctx, userID); pubErr != nil {
				return pubErr
			}
		}
		return err
	}

	removed, err := s.blogs.DeleteAllByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.publishRemoval(ctx, userID); err != nil {
		return err
	}

	log.Info().Str("userID", userID.String()).Int64("blogsRemoved", removed).Msg("user deleted")
	return nil
}

func (s *UserService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.IdentityOf(user), user.TokenEpoch)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("could not issue access token", err)
	}
	return &Session{AccessToken: token, User: user}, nil
}

func (s *UserService) publishRemoval(ctx context.Context, userID uuid.UUID) error {
	if s.epochs == nil {
		return nil
	}
	if err := s.epochs.Remove(ctx, userID); err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("token epoch removal not published")
		return errs.NewRevocationLaggedError(err)
	}
	return nil
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = auth.HashPassword("timing-equaliser")
	})
	return dummyHashValue
}
