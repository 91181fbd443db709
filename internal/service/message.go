package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
	"github.com/morb-dev/morbsite/internal/logger"
	"github.com/morb-dev/morbsite/internal/ratelimit"
)

type MessageService interface {
	Create(ctx context.Context, content string, username, parentId *string, clientIP string) (*domain.Message, error)
	List(ctx context.Context, limit int, before domain.MsgId) (*domain.MessageFeed, error)
	Get(ctx context.Context, id domain.MsgId) (*domain.Message, error)
	SoftDelete(ctx context.Context, id domain.MsgId, suppliedSecret string) (*domain.Message, error)
}

type MessageStorage interface {
	CreateMessage(ctx context.Context, data domain.MessageCreationData) (*domain.Message, error)
	GetMessage(ctx context.Context, id domain.MsgId) (*domain.Message, error)
	MessageExists(ctx context.Context, id domain.MsgId) (bool, error)
	ListTopLevel(ctx context.Context, limit int, before domain.MsgId) ([]domain.Message, bool, error)
	SoftDeleteMessage(ctx context.Context, id domain.MsgId) (*domain.Message, error)
}

type ProfanityFilter interface {
	ContainsProfanity(text string) bool
}

type IdentityHasher interface {
	Hash(rawIP string) string
}

// MessageLimits carries the board's validation and paging bounds.
type MessageLimits struct {
	MaxContentLength  int
	MaxUsernameLength int
	DefaultPageSize   int
	MaxPageSize       int
}

type Message struct {
	storage          MessageStorage
	filter           ProfanityFilter
	guard            ratelimit.Guard
	hasher           IdentityHasher
	limits           MessageLimits
	moderationSecret string
}

func NewMessage(storage MessageStorage, filter ProfanityFilter, guard ratelimit.Guard, hasher IdentityHasher, limits MessageLimits, moderationSecret string) MessageService {
	return &Message{storage, filter, guard, hasher, limits, moderationSecret}
}

// Create runs the validation pipeline in order, first failure wins with no
// partial side effects: empty → length → username → parent → profanity →
// rate limit. Only then is the row written and the post recorded.
func (m *Message) Create(ctx context.Context, content string, username, parentId *string, clientIP string) (*domain.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, internal_errors.Validation("Content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > m.limits.MaxContentLength {
		return nil, internal_errors.Validation(
			fmt.Sprintf("Content must be %d characters or less", m.limits.MaxContentLength))
	}

	var trimmedUsername *string
	if username != nil {
		if name := strings.TrimSpace(*username); name != "" {
			if utf8.RuneCountInString(name) > m.limits.MaxUsernameLength {
				return nil, internal_errors.Validation(
					fmt.Sprintf("Username must be %d characters or less", m.limits.MaxUsernameLength))
			}
			trimmedUsername = &name
		}
	}

	var parent *domain.MsgId
	if parentId != nil && *parentId != "" {
		if uuid.Validate(*parentId) != nil {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message: "Parent message not found", Code: internal_errors.CodeParentNotFound, StatusCode: 404}
		}
		exists, err := m.storage.MessageExists(ctx, *parentId)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message: "Parent message not found", Code: internal_errors.CodeParentNotFound, StatusCode: 404}
		}
		parent = parentId
	}

	if m.filter.ContainsProfanity(trimmed) {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message: "Content contains inappropriate language", Code: internal_errors.CodeProfanity, StatusCode: 400}
	}

	ipHash := m.hasher.Hash(clientIP)
	allowed, err := m.guard.Check(ctx, ipHash)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message: "Rate limit exceeded. Please wait before posting again.",
			Code:    internal_errors.CodeRateLimit, StatusCode: 429}
	}

	msg, err := m.storage.CreateMessage(ctx, domain.MessageCreationData{
		Content:  trimmed,
		UserName: trimmedUsername,
		ParentId: parent,
		IpHash:   &ipHash,
	})
	if err != nil {
		return nil, err
	}

	// Recording is bookkeeping, not part of the create transaction; a miss
	// here only under-counts the window.
	if err := m.guard.Record(ctx, ipHash); err != nil {
		logger.Log.Warn("failed to record post for rate limiting",
			"component", "message_service", "error", err)
	}

	return msg, nil
}

func (m *Message) List(ctx context.Context, limit int, before domain.MsgId) (*domain.MessageFeed, error) {
	if limit <= 0 {
		limit = m.limits.DefaultPageSize
	}
	if limit > m.limits.MaxPageSize {
		limit = m.limits.MaxPageSize
	}

	messages, hasMore, err := m.storage.ListTopLevel(ctx, limit, before)
	if err != nil {
		return nil, err
	}

	feed := &domain.MessageFeed{Messages: messages, HasMore: hasMore}
	if hasMore && len(messages) > 0 {
		feed.NextCursor = messages[len(messages)-1].Id
	}
	return feed, nil
}

func (m *Message) Get(ctx context.Context, id domain.MsgId) (*domain.Message, error) {
	if uuid.Validate(id) != nil {
		return nil, internal_errors.NotFound("Message not found")
	}
	return m.storage.GetMessage(ctx, id)
}

// SoftDelete compares the supplied secret before touching anything. A
// mismatch reveals nothing about whether the message exists.
func (m *Message) SoftDelete(ctx context.Context, id domain.MsgId, suppliedSecret string) (*domain.Message, error) {
	if subtle.ConstantTimeCompare([]byte(suppliedSecret), []byte(m.moderationSecret)) != 1 {
		return nil, internal_errors.Unauthorized()
	}
	if uuid.Validate(id) != nil {
		return nil, internal_errors.NotFound("Message not found")
	}
	return m.storage.SoftDeleteMessage(ctx, id)
}
