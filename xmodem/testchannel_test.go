package xmodem

import "time"

// testChannel is a Channel backed by Go channels, for driving the sender
// and receiver state machines against each other (or against a scripted
// byte sequence) without a real transport.
type testChannel struct {
	in  chan byte
	out chan byte
}

// newTestChannelPair returns two ends of an in-memory duplex link: bytes
// written to a arrive as reads on b, and vice versa.
func newTestChannelPair() (a, b *testChannel) {
	c1 := make(chan byte, 1<<16)
	c2 := make(chan byte, 1<<16)
	return &testChannel{in: c1, out: c2}, &testChannel{in: c2, out: c1}
}

func (c *testChannel) ReadByte(timeout time.Duration) (byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	case <-time.After(timeout):
		return 0, NewError(ErrTimeout, "test channel read timed out")
	}
}

func (c *testChannel) Write(p []byte) (int, error) {
	for _, b := range p {
		c.out <- b
	}
	return len(p), nil
}

func (c *testChannel) Flush() error { return nil }

// fastTimeouts shrinks every wait so negotiation-fallback and retry paths
// exercise in milliseconds instead of the wire-speed defaults.
func fastTimeouts() Timeouts {
	return Timeouts{
		ReceiverPreferenceTimeout: 20 * time.Millisecond,
		ReceiverPreferenceRounds:  3,
		ReceiverByteTimeout:       20 * time.Millisecond,

		SenderPreferenceTimeout: 20 * time.Millisecond,
		SenderPreferenceRounds:  3,
		SenderResponseTimeout:   50 * time.Millisecond,
		SenderEOTTimeout:        20 * time.Millisecond,
		SenderEOTAttempts:       5,

		CancelConfirmWindow: 20 * time.Millisecond,
		MaxErrors:           5,
	}
}
