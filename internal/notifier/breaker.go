package notifier

import (
	"context"

	"github.com/vroo/hr-tracker/pkg/circuitbreaker"
)

// breakerNotifier guards sends with a circuit breaker so a Telegram outage
// fails fast instead of stalling every broadcast on timeouts.
type breakerNotifier struct {
	next    Notifier
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker wraps n with the given breaker.
func WithBreaker(n Notifier, cb *circuitbreaker.CircuitBreaker) Notifier {
	return &breakerNotifier{next: n, breaker: cb}
}

func (b *breakerNotifier) Send(ctx context.Context, chatID int64, text string) error {
	return b.breaker.Execute(func() error {
		return b.next.Send(ctx, chatID, text)
	})
}
