package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/almerlucke/wavetable"
	"gopkg.in/yaml.v3"
)

const (
	SampleRate      = 44100.0
	TableLength     = 1024
	FramesPerBuffer = 256
	Frequency       = 440.0
	Amplitude       = 0.5
	Duration        = time.Second
)

type Config struct {
	Stream struct {
		Driver          string  `yaml:"driver"`
		SampleRate      float64 `yaml:"sample_rate"`
		FramesPerBuffer int     `yaml:"frames_per_buffer"`
		Realtime        bool    `yaml:"realtime"`
	} `yaml:"stream"`

	Oscillator struct {
		Frequency     float64 `yaml:"frequency"`
		Amplitude     float64 `yaml:"amplitude"`
		Phase         float64 `yaml:"phase"`
		TableLength   int     `yaml:"table_length"`
		Interpolation string  `yaml:"interpolation"`
		Wrap          string  `yaml:"wrap"`
	} `yaml:"oscillator"`

	Duration time.Duration `yaml:"duration"`

	Render struct {
		Path       string  `yaml:"path"`
		Format     string  `yaml:"format"`
		SampleRate float64 `yaml:"sample_rate"`
		Quality    int     `yaml:"quality"`
		Normalize  bool    `yaml:"normalize"`
	} `yaml:"render"`
}

// Default returns the configuration of a 440 Hz linear interpolated tone
// played for one second on the default output device
func Default() *Config {
	var config Config

	config.Stream.Driver = "portaudio"
	config.Stream.SampleRate = SampleRate
	config.Stream.FramesPerBuffer = FramesPerBuffer
	config.Stream.Realtime = true

	config.Oscillator.Frequency = Frequency
	config.Oscillator.Amplitude = Amplitude
	config.Oscillator.TableLength = TableLength
	config.Oscillator.Interpolation = wavetable.Linear.String()
	config.Oscillator.Wrap = wavetable.WrapInclusive.String()

	config.Duration = Duration

	config.Render.Format = "wav"

	return &config
}

// LoadConfig reads a YAML file on top of the defaults, fields missing from
// the file keep their default value
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	return config, nil
}

// Validate checks the values the oscillator and stream are built from
func (config *Config) Validate() error {
	var errs []error

	if !(config.Stream.SampleRate > 0) || math.IsInf(config.Stream.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("stream.sample_rate: %w", wavetable.ErrSampleRate))
	}

	if config.Stream.FramesPerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("stream.frames_per_buffer should be positive, got %d", config.Stream.FramesPerBuffer))
	}

	if !(config.Oscillator.Frequency > 0) || math.IsInf(config.Oscillator.Frequency, 0) {
		errs = append(errs, fmt.Errorf("oscillator.frequency: %w", wavetable.ErrFrequency))
	}

	if config.Oscillator.TableLength <= 0 {
		errs = append(errs, fmt.Errorf("oscillator.table_length: %w", wavetable.ErrTableLength))
	}

	if _, err := wavetable.ParsePolicy(config.Oscillator.Interpolation); err != nil {
		errs = append(errs, fmt.Errorf("oscillator.interpolation: %w", err))
	}

	if _, err := wavetable.ParseWrapMode(config.Oscillator.Wrap); err != nil {
		errs = append(errs, fmt.Errorf("oscillator.wrap: %w", err))
	}

	if config.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration should be positive, got %v", config.Duration))
	} else if config.TotalFrames() < 1 {
		errs = append(errs, fmt.Errorf("duration %v is shorter than one frame", config.Duration))
	}

	if config.Render.SampleRate < 0 || math.IsInf(config.Render.SampleRate, 0) || math.IsNaN(config.Render.SampleRate) {
		errs = append(errs, fmt.Errorf("render.sample_rate should be zero or a positive finite rate, got %v", config.Render.SampleRate))
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// TotalFrames returns the number of frames rendered or played for Duration
func (config *Config) TotalFrames() int {
	return int(math.Round(config.Duration.Seconds() * config.Stream.SampleRate))
}

// NewOscillator builds the table and oscillator described by the config. The
// table is guarded whenever the policy or wrap mode reads past the last
// cycle sample.
func (config *Config) NewOscillator() (*wavetable.Oscillator, error) {
	policy, err := wavetable.ParsePolicy(config.Oscillator.Interpolation)
	if err != nil {
		return nil, err
	}

	wrap, err := wavetable.ParseWrapMode(config.Oscillator.Wrap)
	if err != nil {
		return nil, err
	}

	var table *wavetable.Table

	if policy == wavetable.Linear || wrap == wavetable.WrapLegacy {
		table, err = wavetable.NewGuardedTable(config.Oscillator.TableLength)
	} else {
		table, err = wavetable.NewTable(config.Oscillator.TableLength)
	}

	if err != nil {
		return nil, err
	}

	return wavetable.NewOscillator(wavetable.Params{
		Frequency:  config.Oscillator.Frequency,
		Amplitude:  config.Oscillator.Amplitude,
		Phase:      config.Oscillator.Phase,
		SampleRate: config.Stream.SampleRate,
		Table:      table,
		Policy:     policy,
		Wrap:       wrap,
	})
}
