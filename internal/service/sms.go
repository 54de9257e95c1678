package service

import (
	"context"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/models"
	"eldrix/admin/internal/notify"
)

// smsRelay forwards session events to users on SMS sessions. Delivery is
// best effort: failures are logged and never fail the caller.
type smsRelay struct {
	users    UserStore
	notifier notify.Notifier
	log      zerolog.Logger
}

func (r smsRelay) send(ctx context.Context, session models.HelpSession, kind notify.Kind, text, imageURL string) {
	if r.notifier == nil || !session.IsSMS() {
		return
	}

	user, err := r.users.GetByID(ctx, session.UserID)
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", session.ID).Msg("sms relay: load user failed")
		return
	}
	if user.Phone == "" || !user.SMSConsent {
		r.log.Debug().Str("session_id", session.ID).Msg("sms relay: user has no reachable phone")
		return
	}

	n := notify.Notification{
		Kind:      kind,
		SessionID: session.ID,
		UserID:    user.ID,
		Phone:     user.Phone,
		Text:      text,
		ImageURL:  imageURL,
	}
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.log.Error().Err(err).Str("session_id", session.ID).Str("kind", string(kind)).Msg("sms relay: enqueue failed")
	}
}
