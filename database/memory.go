package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
)

// memoryStore holds both tables under one lock so cascades see a consistent view.
type memoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*memoryRow[models.User]
	blogs map[uuid.UUID]*memoryRow[models.Blog]
	seq   uint64
	now   func() time.Time
}

// memoryRow keeps an insertion sequence to break created_at ties.
type memoryRow[T any] struct {
	value T
	seq   uint64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[uuid.UUID]*memoryRow[models.User]),
		blogs: make(map[uuid.UUID]*memoryRow[models.Blog]),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func newestFirst[T any](rows []*memoryRow[T], createdAt func(*T) time.Time) []*T {
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := createdAt(&rows[i].value), createdAt(&rows[j].value)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v := row.value
		out = append(out, &v)
	}
	return out
}

type MemoryUserRepo struct {
	store *memoryStore
}

func (r *MemoryUserRepo) Add(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.users {
		if row.value.Email == user.Email {
			return errs.NewAlreadyExists("user")
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	} else if _, taken := s.users[user.ID]; taken {
		return errs.NewAlreadyExists("user")
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = &memoryRow[models.User]{value: *user, seq: s.nextSeq()}
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.users[id]
	if !ok {
		return nil, errs.NewNotFound("user")
	}
	user := row.value
	return &user, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.users {
		if row.value.Email == email {
			user := row.value
			return &user, nil
		}
	}
	return nil, errs.NewNotFound("user")
}

func (r *MemoryUserRepo) FindNonAdmins(_ context.Context) ([]*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*memoryRow[models.User], 0, len(s.users))
	for _, row := range s.users {
		if !row.value.IsAdmin() {
			rows = append(rows, row)
		}
	}
	return newestFirst(rows, func(u *models.User) time.Time { return u.CreatedAt }), nil
}

func (r *MemoryUserRepo) PromoteToAdmin(_ context.Context, id uuid.UUID) (int, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok {
		return 0, false, errs.NewNotFound("user")
	}
	if row.value.IsAdmin() {
		return row.value.TokenEpoch, false, nil
	}
	row.value.Role = models.RoleAdmin
	row.value.TokenEpoch++
	row.value.UpdatedAt = s.now()
	return row.value.TokenEpoch, true, nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errs.NewNotFound("user")
	}
	delete(s.users, id)
	return nil
}

func (r *MemoryUserRepo) TokenEpoch(_ context.Context, id uuid.UUID) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.users[id]
	if !ok {
		return 0, errs.NewNotFound("user")
	}
	return row.value.TokenEpoch, nil
}

type MemoryBlogRepo struct {
	store *memoryStore
}

func (r *MemoryBlogRepo) Add(_ context.Context, blog *models.Blog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	} else if _, taken := s.blogs[blog.ID]; taken {
		return errs.NewAlreadyExists("blog")
	}
	now := s.now()
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = now
	}
	blog.UpdatedAt = now

	s.blogs[blog.ID] = &memoryRow[models.Blog]{value: copyBlog(*blog), seq: s.nextSeq()}
	return nil
}

func (r *MemoryBlogRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Blog, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.blogs[id]
	if !ok {
		return nil, errs.NewNotFound("blog")
	}
	blog := copyBlog(row.value)
	return &blog, nil
}

func (r *MemoryBlogRepo) FindByOwner(_ context.Context, userID uuid.UUID) ([]*models.Blog, error) {
	return r.list(func(b *models.Blog) bool { return b.UserID == userID }), nil
}

func (r *MemoryBlogRepo) FindAll(_ context.Context) ([]*models.Blog, error) {
	return r.list(func(*models.Blog) bool { return true }), nil
}

func (r *MemoryBlogRepo) list(keep func(*models.Blog) bool) []*models.Blog {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*memoryRow[models.Blog], 0, len(s.blogs))
	for _, row := range s.blogs {
		if keep(&row.value) {
			rows = append(rows, &memoryRow[models.Blog]{value: copyBlog(row.value), seq: row.seq})
		}
	}
	return newestFirst(rows, func(b *models.Blog) time.Time { return b.CreatedAt })
}

func (r *MemoryBlogRepo) Update(_ context.Context, id uuid.UUID, patch models.BlogPatch) (*models.Blog, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.blogs[id]
	if !ok {
		return nil, errs.NewNotFound("blog")
	}
	if !patch.Empty() {
		if patch.Title != nil {
			row.value.Title = *patch.Title
		}
		if patch.Content != nil {
			row.value.Content = *patch.Content
		}
		if patch.ImageURL != nil {
			url := *patch.ImageURL
			row.value.ImageURL = &url
		}
		row.value.UpdatedAt = s.now()
	}
	blog := copyBlog(row.value)
	return &blog, nil
}

func (r *MemoryBlogRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blogs[id]; !ok {
		return errs.NewNotFound("blog")
	}
	delete(s.blogs, id)
	return nil
}

func (r *MemoryBlogRepo) ImageURLsByOwner(_ context.Context, userID uuid.UUID) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var urls []string
	for _, row := range s.blogs {
		if row.value.UserID == userID && row.value.ImageURL != nil && *row.value.ImageURL != "" {
			urls = append(urls, *row.value.ImageURL)
		}
	}
	return urls, nil
}

func (r *MemoryBlogRepo) DeleteByOwner(_ context.Context, userID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.blogs {
		if row.value.UserID == userID {
			delete(s.blogs, id)
			n++
		}
	}
	return n, nil
}

// copyBlog detaches the ImageURL pointer from stored state.
func copyBlog(b models.Blog) models.Blog {
	if b.ImageURL != nil {
		url := *b.ImageURL
		b.ImageURL = &url
	}
	return b
}
