package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/morb-dev/morbsite/internal/domain"
)

func (s *Storage) CreateMeme(ctx context.Context, imageUrl string, title, creatorName *string) (*domain.Meme, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate meme id: %w", err)
	}
	createdTs := time.Now().UTC().Round(time.Microsecond)

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO memes(id, image_url, title, creator_name, created_at)
	VALUES($1, $2, $3, $4, $5)`,
		id.String(), imageUrl, title, creatorName, createdTs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meme: %w", err)
	}

	return &domain.Meme{
		Id:          id.String(),
		ImageUrl:    imageUrl,
		Title:       title,
		CreatorName: creatorName,
		CreatedAt:   createdTs,
	}, nil
}

func (s *Storage) ListMemes(ctx context.Context, limit int) ([]domain.Meme, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, image_url, title, creator_name, created_at
	FROM memes
	ORDER BY created_at DESC, id DESC
	LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memes: %w", err)
	}
	defer rows.Close()

	memes := []domain.Meme{}
	for rows.Next() {
		var meme domain.Meme
		if err := rows.Scan(&meme.Id, &meme.ImageUrl, &meme.Title, &meme.CreatorName, &meme.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meme row: %w", err)
		}
		memes = append(memes, meme)
	}
	return memes, rows.Err()
}
