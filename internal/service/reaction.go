package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

type ReactionService interface {
	Apply(ctx context.Context, messageId domain.MsgId, kind string) (domain.ReactionCounts, error)
}

type ReactionStorage interface {
	ApplyReaction(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error)
}

type Reaction struct {
	storage ReactionStorage
}

func NewReaction(storage ReactionStorage) ReactionService {
	return &Reaction{storage}
}

// Apply rejects unknown kinds before any mutation, then delegates to the
// storage layer's atomic upsert-increment.
func (r *Reaction) Apply(ctx context.Context, messageId domain.MsgId, kind string) (domain.ReactionCounts, error) {
	reactionKind := domain.ReactionKind(kind)
	if !reactionKind.Valid() {
		return nil, internal_errors.Validation("Invalid reaction type")
	}
	if uuid.Validate(messageId) != nil {
		return nil, internal_errors.NotFound("Message not found")
	}
	return r.storage.ApplyReaction(ctx, messageId, reactionKind)
}
