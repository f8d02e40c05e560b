package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/errs"
)

const contentTypePNG = "image/png"

// ErrForeignURL is returned when asked to delete a URL this store did not issue.
var ErrForeignURL = errors.New("url does not belong to this store")

// Store keeps encoded objects and addresses them by public URL.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Uploader is the Media Attachment component: bytes in, public URL out.
type Uploader struct {
	store  Store
	folder string
}

func NewUploader(store Store, folder string) *Uploader {
	return &Uploader{store: store, folder: folder}
}

// Upload normalises the image to PNG and stores it under the configured folder.
// Undecodable input is a 400, a provider failure a 502.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errs.NewUploadError(fmt.Errorf("read upload: %w", err))
	}

	encoded, err := ConvertToPNG(data)
	if err != nil {
		return "", errs.NewUnsupportedImageError(err)
	}

	key := ObjectKey(u.folder, originalName)
	url, err := u.store.Put(ctx, key, encoded, contentTypePNG)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("image upload failed")
		return "", errs.NewUploadError(err)
	}

	log.Debug().Str("key", key).Int("bytes", len(encoded)).Msg("image stored")
	return url, nil
}
