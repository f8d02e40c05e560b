// Package services holds the User Directory and Blog Store business rules.
// Handlers call in with the caller's verified identity; ownership is decided here.
package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/rpupo63/blog-platform-backend/auth"
	"github.com/rpupo63/blog-platform-backend/models"
)

// TokenIssuer signs identity snapshots.
type TokenIssuer interface {
	Issue(identity auth.Identity, epoch int) (string, error)
}

// EpochPublisher pushes changed token epochs to the checker that gates requests.
type EpochPublisher interface {
	Advance(ctx context.Context, userID uuid.UUID, epoch int) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

// ownerLookup confirms a blog owner exists before anything is stored for them.
type ownerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, originalName string) (string, error)
}

// ImageDiscarder schedules deletion of images nothing references any more.
type ImageDiscarder interface {
	Discard(urls ...string)
}

// ImageFile is an uploaded image awaiting storage.
type ImageFile struct {
	Name string
	Body io.Reader
}

// canActFor reports whether caller may act on resources owned by ownerID.
func canActFor(caller auth.Identity, ownerID uuid.UUID) bool {
	return caller.IsAdmin() || caller.UserID == ownerID
}
