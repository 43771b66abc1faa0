package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/models"
	"github.com/keetrykee/Kilua/internal/session"
)

// Completer performs one completion round trip.
type Completer interface {
	Complete(ctx context.Context, userID int64, prompt string) (string, error)
}

// Responder runs the completion pipeline for one accepted prompt:
// complete, append the exchange to history, deliver the reply, set the
// cooldown. Failures never propagate to the chat surface; a fallback
// line is sent instead and the user's history is left untouched.
type Responder struct {
	completer  Completer
	history    *session.History
	cooldowns  *session.Cooldowns
	inflight   *session.Inflight
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewResponder(completer Completer, history *session.History, cooldowns *session.Cooldowns, dispatcher *Dispatcher, logger *zap.Logger) *Responder {
	return &Responder{
		completer:  completer,
		history:    history,
		cooldowns:  cooldowns,
		inflight:   session.NewInflight(),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Respond dispatches one completion for the user. It reports false when
// a completion for the same user is already in flight, in which case
// the prompt is dropped to keep history appends ordered.
func (r *Responder) Respond(ctx context.Context, userID int64, prompt string, send SendFunc) bool {
	if !r.inflight.TryAcquire(userID) {
		r.logger.Debug("Completion already in flight, dropping prompt",
			zap.Int64("user_id", userID))
		return false
	}
	defer r.inflight.Release(userID)

	reply, err := r.completer.Complete(ctx, userID, prompt)
	if err != nil {
		r.logger.Warn("Completion failed, sending fallback",
			zap.Error(err),
			zap.Int64("user_id", userID))
		if serr := send(r.dispatcher.Fallback()); serr != nil {
			r.logger.Error("Failed to send fallback line",
				zap.Error(serr),
				zap.Int64("user_id", userID))
		}
		return true
	}

	r.history.Append(userID,
		models.Turn{Role: models.RoleUser, Content: prompt},
		models.Turn{Role: models.RoleAssistant, Content: reply})

	if err := r.dispatcher.Deliver(ctx, send, reply); err != nil {
		// Best effort: no retry, and no cooldown for a reply the user
		// may never have seen.
		r.logger.Error("Failed to deliver reply",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return true
	}

	r.cooldowns.Set(userID)
	return true
}
