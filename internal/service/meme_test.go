package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

type MockMemeStorage struct {
	CreateMemeFunc func(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error)
	ListMemesFunc  func(ctx context.Context, limit int) ([]domain.Meme, error)
}

func (m *MockMemeStorage) CreateMeme(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error) {
	if m.CreateMemeFunc != nil {
		return m.CreateMemeFunc(ctx, imageUrl, title, creatorName)
	}
	return &domain.Meme{Id: "meme-1", ImageUrl: imageUrl, Title: title, CreatorName: creatorName}, nil
}

func (m *MockMemeStorage) ListMemes(ctx context.Context, limit int) ([]domain.Meme, error) {
	if m.ListMemesFunc != nil {
		return m.ListMemesFunc(ctx, limit)
	}
	return []domain.Meme{}, nil
}

type MockMediaStorage struct {
	SaveFunc func(data io.Reader, id, extension string) (string, error)
}

func (m *MockMediaStorage) Save(data io.Reader, id, extension string) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(data, id, extension)
	}
	return "memes/" + id + extension, nil
}

// pngDataURL encodes a 1x1 png as a base64 data URL.
func pngDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestMemeService(storage *MockMemeStorage, media *MockMediaStorage) MemeService {
	return NewMeme(storage, media, 8<<20, 50, 100)
}

func TestMemeCreate(t *testing.T) {
	ctx := context.Background()
	storage := &MockMemeStorage{}
	media := &MockMediaStorage{}

	var savedExtension, storedUrl string
	media.SaveFunc = func(data io.Reader, id, extension string) (string, error) {
		savedExtension = extension
		return "memes/" + id + extension, nil
	}
	storage.CreateMemeFunc = func(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error) {
		storedUrl = imageUrl
		return &domain.Meme{Id: "meme-1", ImageUrl: imageUrl, Title: title, CreatorName: creatorName}, nil
	}
	service := newTestMemeService(storage, media)

	title := "  morb wins  "
	meme, err := service.Create(ctx, pngDataURL(t), &title, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedExtension != ".png" {
		t.Errorf("expected .png extension, got %q", savedExtension)
	}
	if !strings.HasPrefix(storedUrl, "/media/memes/") {
		t.Errorf("stored url should be under /media/, got %q", storedUrl)
	}
	if meme.Title == nil || *meme.Title != "morb wins" {
		t.Errorf("title not trimmed: %v", meme.Title)
	}
}

func TestMemeCreateRejectsBadPayloads(t *testing.T) {
	ctx := context.Background()
	service := newTestMemeService(&MockMemeStorage{}, &MockMediaStorage{})

	cases := []struct {
		name      string
		imageData string
	}{
		{"not a data url", "hello world"},
		{"bad base64", "data:image/png;base64,$$$not-base64$$$"},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(ctx, tc.imageData, nil, nil)
			expectCode(t, err, internal_errors.CodeValidation, 400)
		})
	}
}

func TestMemeCreateSizeCap(t *testing.T) {
	ctx := context.Background()
	service := NewMeme(&MockMemeStorage{}, &MockMediaStorage{}, 10, 50, 100)

	_, err := service.Create(ctx, pngDataURL(t), nil, nil)
	expectCode(t, err, internal_errors.CodeValidation, 400)
}

func TestMemeCreateSanitizesText(t *testing.T) {
	ctx := context.Background()
	storage := &MockMemeStorage{}
	var storedTitle, storedCreator *string
	storage.CreateMemeFunc = func(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error) {
		storedTitle, storedCreator = title, creatorName
		return &domain.Meme{Id: "meme-1"}, nil
	}
	service := newTestMemeService(storage, &MockMediaStorage{})

	title := `<script>alert(1)</script>morb`
	creator := `<b></b>   `
	if _, err := service.Create(ctx, pngDataURL(t), &title, &creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storedTitle == nil || *storedTitle != "morb" {
		t.Errorf("markup should be stripped from title, got %v", storedTitle)
	}
	if storedCreator != nil {
		t.Errorf("markup-only creator should collapse to nil, got %q", *storedCreator)
	}
}

func TestMemeCreateMediaError(t *testing.T) {
	ctx := context.Background()
	mockError := errors.New("mock SaveFunc")
	media := &MockMediaStorage{
		SaveFunc: func(data io.Reader, id, extension string) (string, error) { return "", mockError },
	}
	service := newTestMemeService(&MockMemeStorage{}, media)

	if _, err := service.Create(ctx, pngDataURL(t), nil, nil); !errors.Is(err, mockError) {
		t.Errorf("expected %v, got %v", mockError, err)
	}
}

func TestMemeList(t *testing.T) {
	ctx := context.Background()
	var gotLimit int
	storage := &MockMemeStorage{
		ListMemesFunc: func(ctx context.Context, limit int) ([]domain.Meme, error) {
			gotLimit = limit
			return []domain.Meme{}, nil
		},
	}
	service := newTestMemeService(storage, &MockMediaStorage{})

	service.List(ctx, 0)
	if gotLimit != 50 {
		t.Errorf("zero limit should default to 50, got %d", gotLimit)
	}
	service.List(ctx, 1000)
	if gotLimit != 100 {
		t.Errorf("oversized limit should clamp to 100, got %d", gotLimit)
	}
	service.List(ctx, 7)
	if gotLimit != 7 {
		t.Errorf("in-range limit should pass through, got %d", gotLimit)
	}
}
