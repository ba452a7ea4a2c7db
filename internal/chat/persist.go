package chat

import (
	"context"
	"fmt"
	"time"

	"futureself/internal/models"
)

// Exchange is the pair of turns one chat interaction appends: the user's
// message and the future-self reply, written in that order.
//
// The two writes are separate inserts; storage offers no transaction across
// them, so a failure between them can leave the user turn without its reply.
type Exchange struct {
	User  models.Turn
	Reply models.Turn
}

func NewExchange(userID, message, reply string) Exchange {
	return Exchange{
		User:  models.Turn{UserID: userID, Role: models.RoleUser, Message: message},
		Reply: models.Turn{UserID: userID, Role: models.RoleFutureSelf, Message: reply},
	}
}

// PersistExchange appends the user turn and then the reply. Each write is
// retried up to the configured attempts. When the user turn cannot be written
// the reply is skipped so the thread never holds a reply without its prompt.
func (s *Service) PersistExchange(ctx context.Context, thread models.Thread, ex *Exchange) error {
	log := s.logger.With("thread_scope", thread.Scope, "thread_id", thread.ID)

	if err := s.appendWithRetry(ctx, thread, &ex.User); err != nil {
		s.metrics.persistFailures.WithLabelValues(string(models.RoleUser)).Inc()
		s.metrics.persistFailures.WithLabelValues(string(models.RoleFutureSelf)).Inc()
		log.Errorw("turn_persist_failed", "role", models.RoleUser, "reply_skipped", true, "error", err)
		return fmt.Errorf("persist user turn: %w", err)
	}

	if err := s.appendWithRetry(ctx, thread, &ex.Reply); err != nil {
		s.metrics.persistFailures.WithLabelValues(string(models.RoleFutureSelf)).Inc()
		log.Errorw("turn_persist_failed", "role", models.RoleFutureSelf, "reply_skipped", false, "error", err)
		return fmt.Errorf("persist reply turn: %w", err)
	}

	return nil
}

func (s *Service) appendWithRetry(ctx context.Context, thread models.Thread, turn *models.Turn) error {
	var err error
	for attempt := 1; attempt <= s.persistAttempts; attempt++ {
		if err = s.store.AppendTurn(ctx, thread, turn); err == nil {
			return nil
		}
		if attempt == s.persistAttempts {
			break
		}

		s.logger.Warnw("Turn write failed, retrying",
			"role", turn.Role, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(time.Duration(attempt) * s.persistBackoff):
		}
	}
	return err
}
