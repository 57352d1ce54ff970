package notify

import "context"

type notifierKey struct{}

// WithNotifier returns a copy of ctx that routes notices to n
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// FromContext returns the notifier set by WithNotifier, or fallback when
// ctx carries none.
func FromContext(ctx context.Context, fallback Notifier) Notifier {
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok && n != nil {
		return n
	}
	return fallback
}
