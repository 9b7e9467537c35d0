// Package desktop shows notifications through the desktop's notification
// service.
package desktop

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

type Notifier struct {
	title string
	alert bool
}

// NewNotifier returns a notifier that posts under title. With alert set the
// system notification sound is played as well.
func NewNotifier(title string, alert bool) *Notifier {
	return &Notifier{title: title, alert: alert}
}

func (n *Notifier) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	send := beeep.Notify
	if n.alert {
		send = beeep.Alert
	}
	if err := send(n.title, message, ""); err != nil {
		return fmt.Errorf("showing desktop notification: %w", err)
	}
	return nil
}
