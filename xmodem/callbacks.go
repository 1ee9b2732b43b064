package xmodem

// Callbacks provides hooks for transfer events. All fields are optional;
// nil callbacks use default (silent) behavior, following the teacher's
// merge-with-defaults pattern.
type Callbacks struct {
	// OnProgress is called after each block is accepted/sent.
	// transferred is the number of block bytes moved so far, SUB padding
	// included. total is always 0: neither the Sender nor the Receiver
	// knows the payload's length in advance.
	OnProgress func(transferred, total int64, rate float64)

	// OnBlockRetry is called, for diagnostics, each time a Sender gets a
	// non-ACK response to a block and each time a Receiver NAKs a block
	// that failed validation. Receiver NAKs sent after a read timeout do
	// not call it. errorCount is the running count toward maxErrors.
	OnBlockRetry func(seq byte, errorCount int)

	// OnModeNegotiated is called once, when the sender and receiver have
	// agreed on an integrity mode.
	OnModeNegotiated func(mode Mode)
}

func defaultCallbacks() *Callbacks {
	return &Callbacks{
		OnProgress:       func(int64, int64, float64) {},
		OnBlockRetry:     func(byte, int) {},
		OnModeNegotiated: func(Mode) {},
	}
}

// mergeCallbacks fills any nil field of user with a no-op default, the
// way the teacher's mergeCallbacks does.
func mergeCallbacks(user *Callbacks) *Callbacks {
	def := defaultCallbacks()
	if user == nil {
		return def
	}
	out := *user
	if out.OnProgress == nil {
		out.OnProgress = def.OnProgress
	}
	if out.OnBlockRetry == nil {
		out.OnBlockRetry = def.OnBlockRetry
	}
	if out.OnModeNegotiated == nil {
		out.OnModeNegotiated = def.OnModeNegotiated
	}
	return &out
}
