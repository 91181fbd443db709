package service

import (
	"context"
	"errors"
	"testing"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

type MockReactionStorage struct {
	ApplyReactionFunc func(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error)
}

func (m *MockReactionStorage) ApplyReaction(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error) {
	if m.ApplyReactionFunc != nil {
		return m.ApplyReactionFunc(ctx, messageId, kind)
	}
	return domain.EmptyReactionCounts(), nil
}

func TestReactionApply(t *testing.T) {
	ctx := context.Background()
	storage := &MockReactionStorage{}
	service := NewReaction(storage)

	expected := domain.EmptyReactionCounts()
	expected[domain.Heart] = 3
	storage.ApplyReactionFunc = func(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error) {
		if messageId != testMessageId {
			t.Errorf("unexpected message id: %s", messageId)
		}
		if kind != domain.Heart {
			t.Errorf("unexpected kind: %s", kind)
		}
		return expected, nil
	}

	counts, err := service.Apply(ctx, testMessageId, "HEART")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[domain.Heart] != 3 {
		t.Errorf("expected HEART count 3, got %d", counts[domain.Heart])
	}
	if len(counts) != len(domain.ReactionKinds) {
		t.Errorf("response must carry all %d kinds, got %d", len(domain.ReactionKinds), len(counts))
	}
}

func TestReactionApplyInvalidKind(t *testing.T) {
	ctx := context.Background()
	storage := &MockReactionStorage{
		ApplyReactionFunc: func(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error) {
			t.Error("storage must not be touched for an unknown kind")
			return nil, nil
		},
	}
	service := NewReaction(storage)

	for _, kind := range []string{"THUMBS_SIDEWAYS", "heart", "", "HEART "} {
		_, err := service.Apply(ctx, testMessageId, kind)
		expectCode(t, err, internal_errors.CodeValidation, 400)
	}
}

func TestReactionApplyMalformedId(t *testing.T) {
	ctx := context.Background()
	service := NewReaction(&MockReactionStorage{})

	_, err := service.Apply(ctx, "not-a-uuid", "LAUGH")
	expectCode(t, err, internal_errors.CodeNotFound, 404)
}

func TestReactionApplyStorageError(t *testing.T) {
	ctx := context.Background()
	mockError := errors.New("mock ApplyReactionFunc")
	storage := &MockReactionStorage{
		ApplyReactionFunc: func(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error) {
			return nil, mockError
		},
	}
	service := NewReaction(storage)

	if _, err := service.Apply(ctx, testMessageId, "ANGRY"); !errors.Is(err, mockError) {
		t.Errorf("expected %v, got %v", mockError, err)
	}
}
