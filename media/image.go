// Package media normalises uploaded images and keeps them in object storage.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// maxPixels bounds decoded image size; headers are checked before decoding.
const maxPixels int64 = 50_000_000

var ErrImageTooLarge = errors.New("image dimensions too large")

// ConvertToPNG decodes a png, jpeg or gif image and re-encodes it as PNG.
func ConvertToPNG(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	if format == "png" {
		// Already the target encoding; still fully decode to reject truncated files.
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PublicID derives the stored name from the part of the original file name
// before its first dot. Anything outside [A-Za-z0-9_-] becomes '-'.
// An empty result falls back to a random id.
func PublicID(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	id := strings.Trim(b.String(), "-")
	if id == "" {
		return uuid.NewString()
	}
	if len(id) > 64 {
		id = id[:64]
	}
	return id
}

// ObjectKey is "<folder>/<public id>-<ulid>.png". The ulid suffix keeps two
// uploads with the same file name from overwriting each other.
func ObjectKey(folder, originalName string) string {
	name := PublicID(originalName) + "-" + strings.ToLower(ulid.Make().String()) + ".png"
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
