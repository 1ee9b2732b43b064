package xmodem

import (
	"context"
)

// Receiver drives the receive side of a transfer: mode negotiation,
// in-order block acceptance with duplicate tolerance, and clean
// termination on EOT or peer cancel. It holds exactly the state spec.md
// §4.4 names: the negotiated mode, expected_seq, the assembled payload,
// and a bounded error_count.
type Receiver struct {
	ch        Channel
	logger    Logger
	callbacks *Callbacks
	ctx       context.Context

	mode        Mode
	expectedSeq byte
	errorCount  int
	sink        *Sink
	timeouts    Timeouts
}

// ReceiverConfig configures a Receiver. A zero-value ReceiverConfig is
// valid: NewReceiver fills in a NoopLogger, default callbacks, and
// DefaultTimeouts.
type ReceiverConfig struct {
	Logger    Logger
	Callbacks *Callbacks
	// Timeouts overrides DefaultTimeouts when non-nil. Tests against an
	// in-memory Channel typically shrink these; real transports should
	// leave this nil.
	Timeouts *Timeouts
}

// NewReceiver creates a Receiver bound to ch.
func NewReceiver(ch Channel, config *ReceiverConfig) *Receiver {
	if config == nil {
		config = &ReceiverConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = NoopLogger{}
	}
	timeouts := DefaultTimeouts()
	if config.Timeouts != nil {
		timeouts = *config.Timeouts
	}
	return &Receiver{
		ch:        ch,
		logger:    logger,
		callbacks: mergeCallbacks(config.Callbacks),
		timeouts:  timeouts,
	}
}

// Receive runs the receiver state machine to completion, returning the
// assembled payload on success. A non-nil error means the transfer was
// aborted (peer cancel, retry exhaustion, desync, negotiation failure, or
// context cancellation); no assembled bytes are returned in that case.
func (r *Receiver) Receive(ctx context.Context) ([]byte, error) {
	r.ctx = ctx
	r.sink = NewSink()
	r.expectedSeq = 1
	r.errorCount = 0

	mode, startByte, err := r.negotiate()
	if err != nil {
		return nil, err
	}
	r.mode = mode
	if mode != ModeUnknown {
		r.callbacks.OnModeNegotiated(mode)
	}
	r.logger.Info("receiver: negotiated mode=%s", mode)

	for {
		switch startByte {
		case EOT:
			r.logger.Debug("receiver: got EOT, transfer complete (%d bytes)", r.sink.Len())
			if err := r.sendACK(); err != nil {
				return nil, err
			}
			return r.sink.Bytes(), nil

		case SOH, STX:
			if _, err := r.receiveBlock(startByte); err != nil {
				return nil, err
			}
		}

		startByte, err = r.awaitStart()
		if err != nil {
			return nil, err
		}
	}
}

// negotiate implements the Negotiating state: advertise C (CRC-ready),
// then fall back to NAK (checksum), each for up to
// receiverPreferenceRounds rounds of receiverPreferenceTimeout. Returns
// the negotiated mode and the start byte (SOH/STX/EOT) that ended
// negotiation; mode is ModeUnknown if startByte is EOT, since an empty
// transfer never exchanges a data block.
func (r *Receiver) negotiate() (Mode, byte, error) {
	prefs := []struct {
		b    byte
		mode Mode
	}{
		{C, ModeCRC},
		{NAK, ModeChecksum},
	}

	for _, pref := range prefs {
		for round := 0; round < r.timeouts.ReceiverPreferenceRounds; round++ {
			if err := r.checkCancelled(); err != nil {
				return ModeUnknown, 0, err
			}
			if err := r.writeFlush(pref.b); err != nil {
				return ModeUnknown, 0, err
			}

			b, err := r.ch.ReadByte(r.timeouts.ReceiverPreferenceTimeout)
			if err != nil {
				if IsTimeout(err) {
					continue
				}
				return ModeUnknown, 0, err
			}

			mode, start, recognized, err := r.resolveNegotiationByte(b, pref.mode)
			if err != nil {
				return ModeUnknown, 0, err
			}
			if recognized {
				return mode, start, nil
			}
		}
	}

	return ModeUnknown, 0, r.abort(ErrNegotiation, "no usable response to preference byte")
}

// resolveNegotiationByte classifies b as a negotiation-ending byte
// (SOH/STX/EOT) or a confirmed/spurious CAN. A CAN that turns out not to be
// confirmed may have a real protocol byte sitting right behind it — rather
// than discard it, this recurses on that byte so it is never silently
// dropped.
func (r *Receiver) resolveNegotiationByte(b byte, prefMode Mode) (mode Mode, start byte, recognized bool, err error) {
	switch b {
	case SOH:
		if prefMode == ModeCRC {
			return ModeCRC, SOH, true, nil
		}
		return ModeChecksum, SOH, true, nil
	case STX:
		return ModeCRC1K, STX, true, nil
	case EOT:
		return ModeUnknown, EOT, true, nil
	case CAN:
		recovered, isCAN, timedOut, cerr := r.confirmCancel()
		if cerr != nil {
			return ModeUnknown, 0, false, cerr
		}
		if isCAN {
			r.writeFlush(ACK)
			return ModeUnknown, 0, false, NewError(ErrCancelled, "peer cancelled during negotiation")
		}
		if timedOut {
			return ModeUnknown, 0, false, nil
		}
		return r.resolveNegotiationByte(recovered, prefMode)
	default:
		return ModeUnknown, 0, false, nil
	}
}

// awaitStart implements the AwaitingStart state: a single byte read with
// receiverByteTimeout, dispatched the same way as negotiate's responses
// but without sending a preference byte first.
func (r *Receiver) awaitStart() (byte, error) {
	for {
		if err := r.checkCancelled(); err != nil {
			return 0, err
		}

		b, err := r.ch.ReadByte(r.timeouts.ReceiverByteTimeout)
		if err != nil {
			if IsTimeout(err) {
				r.errorCount++
				if r.errorCount >= r.timeouts.MaxErrors {
					return 0, r.abort(ErrRetryExhausted, "too many timeouts awaiting start")
				}
				if err := r.sendNAK(); err != nil {
					return 0, err
				}
				continue
			}
			return 0, err
		}

		start, recognized, err := r.resolveStartByte(b)
		if err != nil {
			return 0, err
		}
		if recognized {
			return start, nil
		}
	}
}

// resolveStartByte classifies b as SOH/STX/EOT, recovering a byte that
// arrived instead of a second CAN the same way resolveNegotiationByte does.
func (r *Receiver) resolveStartByte(b byte) (start byte, recognized bool, err error) {
	switch b {
	case SOH, STX, EOT:
		return b, true, nil
	case CAN:
		recovered, isCAN, timedOut, cerr := r.confirmCancel()
		if cerr != nil {
			return 0, false, cerr
		}
		if isCAN {
			r.writeFlush(ACK)
			return 0, false, NewError(ErrCancelled, "peer cancelled")
		}
		if timedOut {
			return 0, false, nil
		}
		return r.resolveStartByte(recovered)
	default:
		return 0, false, nil
	}
}

// receiveBlock implements the ReceivingBlock state. start is the start
// byte already consumed by the caller (negotiate or awaitStart).
func (r *Receiver) receiveBlock(start byte) (accepted bool, err error) {
	blockSize := blockSize128
	if start == STX {
		blockSize = blockSize1024
	}
	need := 2 + blockSize + trailerSize(r.mode) // seq, complement, payload, trailer

	buf := make([]byte, need)
	for i := range buf {
		if err := r.checkCancelled(); err != nil {
			return false, err
		}
		b, err := r.ch.ReadByte(r.timeouts.ReceiverByteTimeout)
		if err != nil {
			if IsTimeout(err) {
				r.errorCount++
				if r.errorCount >= r.timeouts.MaxErrors {
					return false, r.abort(ErrRetryExhausted, "too many timeouts mid-block")
				}
				return false, r.sendNAK()
			}
			return false, err
		}
		buf[i] = b
	}

	seq, complement, body := buf[0], buf[1], buf[2:]
	pkt, decErr := decodePacket(r.mode, start, seq, complement, body)
	if decErr == nil {
		r.logger.Debug(formatPacketLog("recv", r.mode, seq, len(pkt.payload)))
	}
	if decErr != nil {
		r.errorCount++
		r.callbacks.OnBlockRetry(seq, r.errorCount)
		if r.errorCount >= r.timeouts.MaxErrors {
			return false, r.abort(ErrRetryExhausted, "too many bad packets")
		}
		return false, r.sendNAK()
	}

	switch {
	case seq == r.expectedSeq:
		r.sink.Write(pkt.payload)
		r.errorCount = 0
		r.expectedSeq++
		r.callbacks.OnProgress(int64(r.sink.Len()), 0, 0)
		return true, r.sendACK()

	case seq == r.expectedSeq-1:
		// Benign retransmission of the last accepted block: acknowledge
		// again without appending or touching error_count.
		return true, r.sendACK()

	default:
		return false, r.abort(ErrDesync, "unexpected sequence number")
	}
}

// confirmCancel waits up to CancelConfirmWindow for a second CAN after the
// first. A single spurious CAN (line noise) with no follow-up is not an
// abort. If the byte that arrives instead is not a CAN, it is returned to
// the caller rather than discarded, since it may be a legitimate protocol
// byte the peer sent right behind the noise.
func (r *Receiver) confirmCancel() (b byte, isCAN bool, timedOut bool, err error) {
	nb, err := r.ch.ReadByte(r.timeouts.CancelConfirmWindow)
	if err != nil {
		if IsTimeout(err) {
			return 0, false, true, nil
		}
		return 0, false, false, err
	}
	return nb, nb == CAN, false, nil
}

func (r *Receiver) sendACK() error { return r.writeFlush(ACK) }
func (r *Receiver) sendNAK() error { return r.writeFlush(NAK) }

func (r *Receiver) writeFlush(b byte) error {
	if _, err := r.ch.Write([]byte{b}); err != nil {
		return NewError(ErrIO, err.Error())
	}
	if err := r.ch.Flush(); err != nil {
		return NewError(ErrIO, err.Error())
	}
	return nil
}

// abort emits the three-CAN sequence spec.md §4.4/§7 require on any
// unrecoverable condition, then returns an Error of the given type.
func (r *Receiver) abort(t ErrorType, message string) error {
	r.ch.Write([]byte{CAN, CAN, CAN})
	r.ch.Flush()
	r.logger.Error("receiver: aborting: %s", message)
	return NewError(t, message)
}

func (r *Receiver) checkCancelled() error {
	if r.ctx == nil {
		return nil
	}
	select {
	case <-r.ctx.Done():
		r.ch.Write([]byte{CAN, CAN, CAN})
		r.ch.Flush()
		return NewError(ErrCancelled, r.ctx.Err().Error())
	default:
		return nil
	}
}
