package cue_playback

// Interface plays short cue sounds, blocking until playback completes.
type Interface interface {
	Play(path string) error
}
