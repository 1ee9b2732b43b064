package xmodem

import (
	"time"

	"go.bug.st/serial"
)

// serialTimeoutError represents go.bug.st/serial's "no data before
// SetReadTimeout elapsed" outcome, which the library reports as (0, nil)
// rather than an error. byteChannel's isTimeoutErr only recognizes errors
// with a Timeout() bool method, so this gives that silent case a shape it
// can recognize.
type serialTimeoutError struct{}

func (serialTimeoutError) Error() string { return "serial: read timeout" }
func (serialTimeoutError) Timeout() bool { return true }

// serialDeadlineReader adapts a serial.Port to ReaderWithTimeout.
// serial.Port has no deadline concept, only SetReadTimeout(duration), so
// each SetReadDeadline call is translated into the duration remaining
// until that instant.
type serialDeadlineReader struct {
	port serial.Port
}

func (s *serialDeadlineReader) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && err == nil {
		return 0, serialTimeoutError{}
	}
	return n, err
}

func (s *serialDeadlineReader) SetReadDeadline(t time.Time) error {
	d := time.Until(t)
	if d < 0 {
		d = 0
	}
	return s.port.SetReadTimeout(d)
}

// OpenSerialChannel opens portName at the given baud rate (8-N-1, the
// universal XMODEM wire format) and returns it as a Channel.
func OpenSerialChannel(portName string, baud int) (Channel, serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, nil, err
	}
	ch := NewChannel(&serialDeadlineReader{port: port}, port)
	return ch, port, nil
}
