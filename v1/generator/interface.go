package generator

// InterruptFlag is the host's cooperative cancellation signal. The generator
// polls it before each batch; implementations must be safe for concurrent
// use.
type InterruptFlag interface {
	Interrupted() bool
}

// NeverInterrupted is an InterruptFlag that never fires.
type NeverInterrupted struct{}

// Interrupted implements InterruptFlag.
func (NeverInterrupted) Interrupted() bool { return false }
