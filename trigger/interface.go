package trigger

import "context"

// Interface blocks the capture flow until a phrase should begin.
type Interface interface {
	// Wait returns true once a listen trigger fires, after the cue sound
	// has finished playing. It returns false, without the cue, when ctx
	// is cancelled or an external stop is signaled.
	Wait(ctx context.Context) (bool, error)

	// TriggerListen arms the gate programmatically, from any goroutine.
	TriggerListen()

	// TriggerAmbientNoiseAdjustment requests an ambient-noise
	// recalibration during the next wait iteration.
	TriggerAmbientNoiseAdjustment()
}
