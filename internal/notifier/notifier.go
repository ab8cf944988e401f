package notifier

import "context"

// Notifier delivers a text to one subscriber. Implementations must treat
// every recipient independently; a failure affects that recipient only.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}
