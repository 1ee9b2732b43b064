package xmodem

import (
	"context"
)

// Config holds the tunables exposed to callers above the fixed protocol
// timeouts in constants.go. Session applies DefaultConfig before any
// Option runs.
type Config struct {
	// Logger receives protocol trace lines. Defaults to NoopLogger.
	Logger Logger
	// Timeouts overrides DefaultTimeouts when non-nil.
	Timeouts *Timeouts
}

// DefaultConfig returns the baseline Config a new Session starts from.
func DefaultConfig() Config {
	return Config{Logger: NoopLogger{}}
}

// Option configures a Session at construction time, following the
// teacher's functional-options shape.
type Option func(*Session)

// WithConfig overrides the session's Config wholesale.
func WithConfig(config Config) Option {
	return func(s *Session) { s.config = config }
}

// WithCallbacks installs transfer-event callbacks.
func WithCallbacks(callbacks Callbacks) Option {
	return func(s *Session) { s.callbacks = &callbacks }
}

// WithContext sets the context used to cancel in-flight transfers.
// Without this option, Send and Receive run with context.Background.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// WithSessionLogger sets the session's logger, overriding Config.Logger.
func WithSessionLogger(logger Logger) Option {
	return func(s *Session) { s.config.Logger = logger }
}

// Session is the façade most callers use: it owns a Channel and applies
// Options to configure how Send and Receive behave, without requiring
// callers to construct a Sender or Receiver directly.
type Session struct {
	ch        Channel
	config    Config
	callbacks *Callbacks
	ctx       context.Context
}

// NewSession creates a Session bound to ch, applying opts in order.
func NewSession(ch Channel, opts ...Option) *Session {
	s := &Session{
		ch:     ch,
		config: DefaultConfig(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.Logger == nil {
		s.config.Logger = NoopLogger{}
	}
	return s
}

// Send transmits src's bytes to the peer as a complete transfer.
func (s *Session) Send(src Source) error {
	sender := NewSender(s.ch, &SenderConfig{
		Logger:    s.config.Logger,
		Callbacks: s.callbacks,
		Timeouts:  s.config.Timeouts,
	})
	return sender.Send(s.ctx, src)
}

// Receive runs a complete receive and returns the assembled payload.
func (s *Session) Receive() ([]byte, error) {
	receiver := NewReceiver(s.ch, &ReceiverConfig{
		Logger:    s.config.Logger,
		Callbacks: s.callbacks,
		Timeouts:  s.config.Timeouts,
	})
	return receiver.Receive(s.ctx)
}
