package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

// CreateMessage persists a new message and returns it in full response shape
// (zeroed reaction counts, empty replies).
func (s *Storage) CreateMessage(ctx context.Context, data domain.MessageCreationData) (*domain.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}
	createdTs := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO messages(id, content, created_at, ip_hash, deleted, user_name, parent_id)
	VALUES($1, $2, $3, $4, FALSE, $5, $6)`,
		id.String(), data.Content, createdTs, data.IpHash, data.UserName, data.ParentId)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return &domain.Message{
		Id:        id.String(),
		Content:   data.Content,
		CreatedAt: createdTs,
		IpHash:    data.IpHash,
		Deleted:   false,
		UserName:  data.UserName,
		ParentId:  data.ParentId,
		Reactions: domain.EmptyReactionCounts(),
		Replies:   []domain.Message{},
	}, nil
}

// GetMessage looks a message up by id, soft-deleted rows included. Replies
// are not attached; this is the direct-lookup path.
func (s *Storage) GetMessage(ctx context.Context, id domain.MsgId) (*domain.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx, `
	SELECT id, content, created_at, ip_hash, deleted, user_name, parent_id
	FROM messages
	WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Message not found")
		}
		return nil, err
	}

	if err := s.attachReactions(ctx, s.db, []domain.MsgId{msg.Id}, map[domain.MsgId]*domain.Message{msg.Id: msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageExists reports whether a non-deleted message with the id exists.
func (s *Storage) MessageExists(ctx context.Context, id domain.MsgId) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1 AND NOT deleted)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check message existence: %w", err)
	}
	return exists, nil
}

// ListTopLevel returns up to limit non-deleted top-level messages, newest
// first, with all their non-deleted replies and reaction counts attached.
// It fetches limit+1 rows; the second return value reports whether a row
// beyond the page exists.
func (s *Storage) ListTopLevel(ctx context.Context, limit int, before domain.MsgId) ([]domain.Message, bool, error) {
	query := `
	SELECT id, content, created_at, ip_hash, deleted, user_name, parent_id
	FROM messages
	WHERE NOT deleted AND parent_id IS NULL`
	args := []interface{}{}
	if before != "" {
		query += ` AND id < $1`
		args = append(args, before)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessageRows(rows)
		if err != nil {
			return nil, false, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	if len(messages) == 0 {
		return []domain.Message{}, false, nil
	}

	topLevelIds := make([]domain.MsgId, len(messages))
	idToMessage := make(map[domain.MsgId]*domain.Message, len(messages))
	for i := range messages {
		topLevelIds[i] = messages[i].Id
		idToMessage[messages[i].Id] = &messages[i]
	}

	if err := s.attachReplies(ctx, s.db, topLevelIds, idToMessage); err != nil {
		return nil, false, err
	}

	// Reactions attach to the page's messages and to every reply on them.
	allIds := topLevelIds
	allMessages := make(map[domain.MsgId]*domain.Message, len(idToMessage))
	for id, msg := range idToMessage {
		allMessages[id] = msg
		for j := range msg.Replies {
			reply := &msg.Replies[j]
			allIds = append(allIds, reply.Id)
			allMessages[reply.Id] = reply
		}
	}
	if err := s.attachReactions(ctx, s.db, allIds, allMessages); err != nil {
		return nil, false, err
	}

	return messages, hasMore, nil
}

// SoftDeleteMessage marks the row deleted without removing it. Replies are
// untouched; deletion does not cascade.
func (s *Storage) SoftDeleteMessage(ctx context.Context, id domain.MsgId) (*domain.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx, `
	UPDATE messages SET deleted = TRUE
	WHERE id = $1
	RETURNING id, content, created_at, ip_hash, deleted, user_name, parent_id`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Message not found")
		}
		return nil, fmt.Errorf("failed to soft delete message: %w", err)
	}

	if err := s.attachReactions(ctx, s.db, []domain.MsgId{msg.Id}, map[domain.MsgId]*domain.Message{msg.Id: msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

// attachReplies fetches every non-deleted reply for the given top-level ids,
// oldest first, and appends them to their parents.
func (s *Storage) attachReplies(ctx context.Context, q Querier, parentIds []domain.MsgId, idToMessage map[domain.MsgId]*domain.Message) error {
	if len(parentIds) == 0 {
		return nil
	}

	rows, err := q.QueryContext(ctx, `
	SELECT id, content, created_at, ip_hash, deleted, user_name, parent_id
	FROM messages
	WHERE NOT deleted AND parent_id = ANY($1)
	ORDER BY created_at ASC, id ASC`, pq.Array(parentIds))
	if err != nil {
		return fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		reply, err := scanMessageRows(rows)
		if err != nil {
			return err
		}
		if parent, ok := idToMessage[*reply.ParentId]; ok {
			parent.Replies = append(parent.Replies, *reply)
		}
	}
	return rows.Err()
}

// attachReactions fetches stored counters for the given ids and shapes them
// into full five-kind count maps on each message.
func (s *Storage) attachReactions(ctx context.Context, q Querier, ids []domain.MsgId, idToMessage map[domain.MsgId]*domain.Message) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := q.QueryContext(ctx, `
	SELECT message_id, reaction_type, count
	FROM reactions
	WHERE message_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageId domain.MsgId
		var kind domain.ReactionKind
		var count int64
		if err := rows.Scan(&messageId, &kind, &count); err != nil {
			return fmt.Errorf("failed to scan reaction row: %w", err)
		}
		if msg, ok := idToMessage[messageId]; ok {
			msg.Reactions[kind] = count
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(&msg.Id, &msg.Content, &msg.CreatedAt, &msg.IpHash, &msg.Deleted, &msg.UserName, &msg.ParentId); err != nil {
		return nil, err
	}
	msg.Reactions = domain.EmptyReactionCounts()
	msg.Replies = []domain.Message{}
	return &msg, nil
}

func scanMessageRows(rows *sql.Rows) (*domain.Message, error) {
	msg, err := scanMessage(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan message row: %w", err)
	}
	return msg, nil
}
