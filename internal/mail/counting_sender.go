package mail

import "context"

// CountingSender wraps a Sender and reports each delivery outcome through
// a pair of callbacks. The callbacks feed the mail counters; keeping them as
// plain funcs keeps this package free of any metrics dependency.
type CountingSender struct {
	inner    Sender
	onSent   func()
	onFailed func()
}

func NewCountingSender(inner Sender, onSent, onFailed func()) *CountingSender {
	if onSent == nil {
		onSent = func() {}
	}
	if onFailed == nil {
		onFailed = func() {}
	}
	return &CountingSender{inner: inner, onSent: onSent, onFailed: onFailed}
}

func (s *CountingSender) Send(ctx context.Context, to string, m *Mail) error {
	if err := s.inner.Send(ctx, to, m); err != nil {
		s.onFailed()
		return err
	}
	s.onSent()
	return nil
}

var _ Sender = (*CountingSender)(nil)
