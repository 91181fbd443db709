package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morb-dev/morbsite/internal/domain"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

// ApplyReaction increments the (message, kind) counter, creating it at 1 when
// absent. The upsert is a single atomic statement, so two concurrent
// reactions of the same kind never lose an update or duplicate the row.
// Returns the full count map for the message, all five kinds included.
func (s *Storage) ApplyReaction(ctx context.Context, messageId domain.MsgId, kind domain.ReactionKind) (domain.ReactionCounts, error) {
	var counts domain.ReactionCounts

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1 AND NOT deleted)`, messageId).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check reaction target: %w", err)
		}
		if !exists {
			return internal_errors.NotFound("Message not found")
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO reactions(message_id, reaction_type, count)
		VALUES($1, $2, 1)
		ON CONFLICT (message_id, reaction_type)
		DO UPDATE SET count = reactions.count + 1`, messageId, string(kind))
		if err != nil {
			return fmt.Errorf("failed to upsert reaction: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
		SELECT reaction_type, count
		FROM reactions
		WHERE message_id = $1`, messageId)
		if err != nil {
			return fmt.Errorf("failed to fetch reaction counts: %w", err)
		}
		defer rows.Close()

		stored := make(map[domain.ReactionKind]int64)
		for rows.Next() {
			var storedKind domain.ReactionKind
			var count int64
			if err := rows.Scan(&storedKind, &count); err != nil {
				return fmt.Errorf("failed to scan reaction count: %w", err)
			}
			stored[storedKind] = count
		}
		if err := rows.Err(); err != nil {
			return err
		}

		counts = domain.BuildReactionCounts(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}
