package xmodem

import (
	"bytes"
	"testing"
)

func TestSinkAccumulatesWrites(t *testing.T) {
	sink := NewSink()
	sink.Write([]byte("hello, "))
	sink.Write([]byte("world"))

	if got := sink.Bytes(); !bytes.Equal(got, []byte("hello, world")) {
		t.Errorf("Bytes() = %q, want %q", got, "hello, world")
	}
	if sink.Len() != len("hello, world") {
		t.Errorf("Len() = %d, want %d", sink.Len(), len("hello, world"))
	}
}

func TestSinkTrimmedBytesStripsTrailingSUB(t *testing.T) {
	sink := NewSink()
	sink.Write(padBlock([]byte("payload"), blockSize128))

	if got := sink.TrimmedBytes(); !bytes.Equal(got, []byte("payload")) {
		t.Errorf("TrimmedBytes() = %q, want %q", got, "payload")
	}
	// Bytes() keeps the padding; only TrimmedBytes() strips it.
	if len(sink.Bytes()) != blockSize128 {
		t.Errorf("Bytes() length = %d, want %d", len(sink.Bytes()), blockSize128)
	}
}

func TestSinkTrimmedBytesEmptySink(t *testing.T) {
	sink := NewSink()
	if got := sink.TrimmedBytes(); len(got) != 0 {
		t.Errorf("TrimmedBytes() on empty sink = %v, want empty", got)
	}
}

func TestSourceAdaptsReader(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("abc")))
	buf := make([]byte, 3)
	n, err := src.Read(buf)
	if err != nil || n != 3 || !bytes.Equal(buf, []byte("abc")) {
		t.Errorf("Read() = (%d, %v), buf=%q", n, err, buf)
	}
}
