package ipc_signals

// Named signals understood by the terminal.
const (
	SignalStartListening     = "startListening"
	SignalButtonPress        = "buttonPress"
	SignalStop               = "stop"
	SignalAdjustAmbientNoise = "adjustAmbientNoise"
)

// Interface is the boolean-valued signal channel shared with other
// processes.
type Interface interface {
	// IsSet reports whether the named signal is currently raised, without
	// consuming it.
	IsSet(name string) bool
	// Consume reports whether the named signal was raised and clears it.
	Consume(name string) bool
}
