package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full terminal configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Listener ListenerConfig `yaml:"listener"`
}

// ListenerConfig holds the capture and phrase-endpointing parameters.
type ListenerConfig struct {
	// input stream
	Channels   int `yaml:"channels"`
	SampleRate int `yaml:"sample_rate"`
	ChunkSize  int `yaml:"chunk_size"`

	// noise detection
	EnergyRatio float64 `yaml:"energy_ratio"`
	Multiplier  float64 `yaml:"multiplier"`

	// MinLoudSec is the minimum seconds of noise before a phrase can be
	// considered complete.
	MinLoudSec float64 `yaml:"min_loud_sec"`
	// MinSilenceAtEnd is the minimum seconds of silence required at the
	// end before a phrase is considered complete.
	MinSilenceAtEnd float64 `yaml:"min_silence_at_end"`
	// RecordingTimeout is the maximum seconds a phrase can be recorded,
	// provided there is noise the entire time.
	RecordingTimeout float64 `yaml:"recording_timeout"`
	// RecordingTimeoutWithSilence is the maximum time recording continues
	// when not enough noise has been detected.
	RecordingTimeoutWithSilence float64 `yaml:"recording_timeout_with_silence"`

	SecBetweenSignalChecks float64 `yaml:"sec_between_signal_checks"`

	AutoAmbientNoiseAdjustment bool    `yaml:"auto_ambient_noise_adjustment"`
	AmbientNoiseAdjustmentTime float64 `yaml:"ambient_noise_adjustment_time"`

	// SignalFolder is the directory watched for named marker files.
	SignalFolder string `yaml:"signal_folder"`
	// ListenSound is played when the listen trigger fires. Empty disables
	// the cue.
	ListenSound string `yaml:"listen_sound"`

	RecordUtterances  bool `yaml:"record_utterances"`
	OverflowException bool `yaml:"overflow_exception"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		DataDir: filepath.Join(os.TempDir(), "ptt-terminal", "recordings"),
		Listener: ListenerConfig{
			Channels:                    1,
			SampleRate:                  16000,
			ChunkSize:                   1024,
			EnergyRatio:                 1.5,
			Multiplier:                  1.0,
			MinLoudSec:                  0.7,
			MinSilenceAtEnd:             0.3,
			RecordingTimeout:            10,
			RecordingTimeoutWithSilence: 3,
			SecBetweenSignalChecks:      0.2,
			AutoAmbientNoiseAdjustment:  false,
			AmbientNoiseAdjustmentTime:  0.5,
			SignalFolder:                filepath.Join(os.TempDir(), "ptt-terminal", "ipc"),
			ListenSound:                 "snd/start_listening.wav",
		},
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	l := &c.Listener

	if l.Channels != 1 {
		return fmt.Errorf("channels must be 1, got %d", l.Channels)
	}

	if l.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", l.SampleRate)
	}

	if l.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", l.ChunkSize)
	}

	if l.EnergyRatio <= 0 {
		return fmt.Errorf("energy_ratio must be positive, got %f", l.EnergyRatio)
	}

	if l.Multiplier <= 0 {
		return fmt.Errorf("multiplier must be positive, got %f", l.Multiplier)
	}

	if l.MinLoudSec < 0 || l.MinSilenceAtEnd < 0 {
		return fmt.Errorf("min_loud_sec and min_silence_at_end must not be negative")
	}

	if l.RecordingTimeout <= 0 {
		return fmt.Errorf("recording_timeout must be positive, got %f", l.RecordingTimeout)
	}

	if l.RecordingTimeoutWithSilence <= 0 {
		return fmt.Errorf("recording_timeout_with_silence must be positive, got %f", l.RecordingTimeoutWithSilence)
	}

	if l.SecBetweenSignalChecks <= 0 {
		return fmt.Errorf("sec_between_signal_checks must be positive, got %f", l.SecBetweenSignalChecks)
	}

	if l.AmbientNoiseAdjustmentTime <= 0 {
		return fmt.Errorf("ambient_noise_adjustment_time must be positive, got %f", l.AmbientNoiseAdjustmentTime)
	}

	return nil
}

// SecPerBuffer is the fractional number of seconds covered by one chunk.
func (l *ListenerConfig) SecPerBuffer() float64 {
	return float64(l.ChunkSize) / float64(l.SampleRate)
}

// SignalCheckInterval is SecBetweenSignalChecks as a duration.
func (l *ListenerConfig) SignalCheckInterval() time.Duration {
	return time.Duration(l.SecBetweenSignalChecks * float64(time.Second))
}
