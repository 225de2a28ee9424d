package sync

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lqhuy/chatdesk/internal/api"
	"github.com/lqhuy/chatdesk/internal/logging"
)

// ErrNoRecipients is returned for a bulk dispatch with an empty
// recipient list.
var ErrNoRecipients = errors.New("no recipients selected")

// ErrBulkRejected is returned when the server accepted the request
// but did not report delivery.
var ErrBulkRejected = errors.New("bulk send rejected by server")

// BulkSender delivers one message to many sessions. *api.Client
// satisfies it.
type BulkSender interface {
	SendBulk(ctx context.Context, sessionIDs []string, content string, images []string) (api.BulkSendResult, error)
}

// BulkDraft is a broadcast under composition: recipients plus the
// shared content.
type BulkDraft struct {
	Recipients []string
	Content    string
	Images     []string
}

// BulkDispatcher sends broadcasts. It never touches the conversation
// or message stores; delivered copies arrive back through the push
// stream like any other message. On failure the caller still holds
// the draft untouched, recipients included, so the whole compose
// state survives for retry.
type BulkDispatcher struct {
	sender BulkSender
	logger zerolog.Logger
}

// NewBulkDispatcher constructs a dispatcher around a sender.
func NewBulkDispatcher(sender BulkSender) *BulkDispatcher {
	return &BulkDispatcher{
		sender: sender,
		logger: logging.Component("bulk"),
	}
}

// Dispatch delivers the draft to every recipient in one request.
func (d *BulkDispatcher) Dispatch(ctx context.Context, draft BulkDraft) error {
	if len(draft.Recipients) == 0 {
		return ErrNoRecipients
	}
	if draft.Content == "" && len(draft.Images) == 0 {
		return ErrNothingToSend
	}
	res, err := d.sender.SendBulk(ctx, draft.Recipients, draft.Content, draft.Images)
	if err != nil {
		d.logger.Error().Err(err).Int("recipients", len(draft.Recipients)).Msg("bulk send failed")
		return err
	}
	if !res.Delivered() {
		d.logger.Warn().Str("status", res.Status).Int("recipients", len(draft.Recipients)).Msg("bulk send not delivered")
		return ErrBulkRejected
	}
	d.logger.Info().Int("recipients", len(draft.Recipients)).Msg("bulk send delivered")
	return nil
}
