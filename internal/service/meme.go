package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	_ "golang.org/x/image/webp" // Registers the webp decoder

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

type MemeService interface {
	Create(ctx context.Context, imageData string, title, creatorName *string) (*domain.Meme, error)
	List(ctx context.Context, limit int) ([]domain.Meme, error)
}

type MemeStorage interface {
	CreateMeme(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error)
	ListMemes(ctx context.Context, limit int) ([]domain.Meme, error)
}

type MediaStorage interface {
	Save(data io.Reader, id, extension string) (string, error)
}

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

var formatExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

type Meme struct {
	storage      MemeStorage
	media        MediaStorage
	sanitizer    *bluemonday.Policy
	maxSizeBytes int64
	defaultLimit int
	maxLimit     int
}

func NewMeme(storage MemeStorage, media MediaStorage, maxSizeBytes int64, defaultLimit, maxLimit int) MemeService {
	return &Meme{
		storage:      storage,
		media:        media,
		sanitizer:    bluemonday.StrictPolicy(),
		maxSizeBytes: maxSizeBytes,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Create accepts a base64 data URL, verifies it decodes as a real image
// (png/jpeg/gif/webp) and stores the bytes in the media store plus a row in
// the database.
func (m *Meme) Create(ctx context.Context, imageData string, title, creatorName *string) (*domain.Meme, error) {
	matches := dataURLPattern.FindStringSubmatch(imageData)
	if matches == nil {
		return nil, internal_errors.Validation("Invalid image data")
	}

	raw, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return nil, internal_errors.Validation("Invalid image data")
	}
	if int64(len(raw)) > m.maxSizeBytes {
		return nil, internal_errors.Validation("Image is too large")
	}

	// Header-only decode; confirms the payload is an image without the
	// memory cost of a full decode.
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, internal_errors.Validation("Unsupported image format")
	}
	extension, ok := formatExtensions[format]
	if !ok {
		return nil, internal_errors.Validation("Unsupported image format")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate meme id: %w", err)
	}

	relativePath, err := m.media.Save(bytes.NewReader(raw), id.String(), extension)
	if err != nil {
		return nil, fmt.Errorf("failed to store meme image: %w", err)
	}

	imageUrl := "/media/" + relativePath
	return m.storage.CreateMeme(ctx, imageUrl, m.cleanOptional(title), m.cleanOptional(creatorName))
}

func (m *Meme) List(ctx context.Context, limit int) ([]domain.Meme, error) {
	if limit <= 0 {
		limit = m.defaultLimit
	}
	if limit > m.maxLimit {
		limit = m.maxLimit
	}
	return m.storage.ListMemes(ctx, limit)
}

// cleanOptional trims and sanitizes a free-text field, mapping empty to nil.
func (m *Meme) cleanOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.TrimSpace(m.sanitizer.Sanitize(*value))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
