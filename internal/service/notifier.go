// Package queue_publisher also hosts the Notifier, which couples the
// durable notification store with best-effort live delivery.
package queue_publisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hassanskary/unistay/internal/hub"
	"github.com/Hassanskary/unistay/internal/model"
	"github.com/Hassanskary/unistay/internal/repository"
)

// Delivery retry policy for live pushes. The DB write is never retried;
// the row is the source of truth once inserted.
const (
	pushAttempts = 3
	pushPause    = 2 * time.Second
)

// Notifier persists notifications and pushes them to any live websocket
// sessions of the recipient.
type Notifier struct {
	repo *repository.NotificationRepo
	hub  *hub.Hub
	log  zerolog.Logger
}

// NewNotifier wires the notification repository and the websocket hub.
func NewNotifier(repo *repository.NotificationRepo, h *hub.Hub, log zerolog.Logger) *Notifier {
	return &Notifier{repo: repo, hub: h, log: log}
}

// Notify inserts the notification row and then attempts live delivery.
// The returned error reflects only the insert; push failures are logged
// because the recipient will still see the row on their next fetch.
func (n *Notifier) Notify(ctx context.Context, userID uint64, kind, message string) error {
	note := model.Notification{UserID: userID, Kind: kind, Message: message}
	if err := n.repo.Create(ctx, &note); err != nil {
		return err
	}
	go n.push(userID, note)
	return nil
}

func (n *Notifier) push(userID uint64, note model.Notification) {
	err := n.hub.SendRetry(userID, hub.Frame{Type: hub.FrameNotification, Payload: note}, pushAttempts, pushPause)
	if err != nil {
		n.log.Debug().Uint64("user_id", userID).Str("kind", note.Kind).Err(err).Msg("notification push not delivered")
	}
}

// PushChat forwards a chat message to the receiver's live sessions.
// Chat rows are written by the handler; this is delivery only.
func (n *Notifier) PushChat(receiverID uint64, msg model.Chat) {
	go func() {
		err := n.hub.SendRetry(receiverID, hub.Frame{Type: hub.FrameChat, Payload: msg}, pushAttempts, pushPause)
		if err != nil {
			n.log.Debug().Uint64("user_id", receiverID).Err(err).Msg("chat push not delivered")
		}
	}()
}
