package xmodem

import (
	"bytes"
	"io"
)

// Source is the payload a Sender streams out, block by block. Read
// returns 0, io.EOF once exhausted — the idiomatic Go substitute for a
// "remaining()" query, so a caller never needs to keep a length in sync
// with the underlying reader.
type Source interface {
	io.Reader
}

// NewSource adapts any io.Reader into a Source. It exists mainly for
// symmetry with Sink and NewSink; most io.Readers already satisfy
// Source directly.
func NewSource(r io.Reader) Source { return r }

// Sink is the growable buffer a Receiver assembles payload into.
type Sink struct {
	buf bytes.Buffer
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) Write(p []byte) (int, error) { return s.buf.Write(p) }

// Bytes returns the assembled payload exactly as received, including any
// trailing SUB padding in the final block.
func (s *Sink) Bytes() []byte { return s.buf.Bytes() }

// TrimmedBytes returns the assembled payload with trailing SUB (0x1A)
// bytes removed. This is an opt-in convenience for consumers whose
// payload format treats SUB purely as padding (e.g. text); callers whose
// data may legitimately end in 0x1A must use Bytes instead, per spec.md's
// note that padding and in-payload data share a byte value and only the
// consumer knows which applies.
func (s *Sink) TrimmedBytes() []byte {
	return TrimSUB(s.buf.Bytes())
}

// Len returns the number of bytes assembled so far.
func (s *Sink) Len() int { return s.buf.Len() }

// TrimSUB strips trailing SUB (0x1A) bytes from an already-assembled
// payload, the same rule Sink.TrimmedBytes applies internally. It exists
// for callers that only have the final []byte a Session.Receive call
// returned, with no Sink at hand.
func TrimSUB(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == SUB {
		end--
	}
	return b[:end]
}
