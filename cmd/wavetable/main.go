// Command wavetable plays a sine tone read from a wavetable, or renders it to
// a sound file when -out is given.
//
//	wavetable [flags] [frequency]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/almerlucke/wavetable"
	"github.com/almerlucke/wavetable/config"
	"github.com/almerlucke/wavetable/driver"
	"github.com/almerlucke/wavetable/render"
	"github.com/almerlucke/wavetable/writer"
)

const numChannels = 2

func main() {
	err := run(context.Background(), os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("wavetable: %v", err)
	}
}

// parseArgs loads the config file named by -config, or the defaults, and
// applies the flags that were set on the command line. A positional argument
// overrides the frequency.
func parseArgs(args []string, output io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("wavetable", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: wavetable [flags] [frequency]\n")
		fs.PrintDefaults()
	}

	def := config.Default()

	configPath := fs.String("config", "", "YAML config file")
	policy := fs.String("policy", def.Oscillator.Interpolation, "table read policy: linear or truncate")
	wrap := fs.String("wrap", def.Oscillator.Wrap, "read position wrap: inclusive or legacy")
	driverName := fs.String("driver", def.Stream.Driver, "audio driver: portaudio, oto or loopback")
	duration := fs.Duration("duration", def.Duration, "play or render duration")
	amplitude := fs.Float64("amplitude", def.Oscillator.Amplitude, "peak amplitude")
	phase := fs.Float64("phase", def.Oscillator.Phase, "initial phase in cycles")
	tableLength := fs.Int("table-length", def.Oscillator.TableLength, "samples per table cycle")
	frames := fs.Int("frames", def.Stream.FramesPerBuffer, "frames per buffer")
	sampleRate := fs.Float64("sample-rate", def.Stream.SampleRate, "stream sample rate")
	out := fs.String("out", "", "render to this file instead of playing")
	format := fs.String("format", def.Render.Format, "render file format: wav, aifc or flac")
	normalize := fs.Bool("normalize", false, "normalize the rendered file to full scale")
	fileRate := fs.Float64("file-rate", 0, "resample the rendered file to this rate")
	quality := fs.Int("quality", 0, "resampler quality, 0 is best, 4 is linear")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	cfg := def
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "policy":
			cfg.Oscillator.Interpolation = *policy
		case "wrap":
			cfg.Oscillator.Wrap = *wrap
		case "driver":
			cfg.Stream.Driver = *driverName
		case "duration":
			cfg.Duration = *duration
		case "amplitude":
			cfg.Oscillator.Amplitude = *amplitude
		case "phase":
			cfg.Oscillator.Phase = *phase
		case "table-length":
			cfg.Oscillator.TableLength = *tableLength
		case "frames":
			cfg.Stream.FramesPerBuffer = *frames
		case "sample-rate":
			cfg.Stream.SampleRate = *sampleRate
		case "out":
			cfg.Render.Path = *out
		case "format":
			cfg.Render.Format = *format
		case "normalize":
			cfg.Render.Normalize = *normalize
		case "file-rate":
			cfg.Render.SampleRate = *fileRate
		case "quality":
			cfg.Render.Quality = *quality
		}
	})

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one frequency argument, got %d", fs.NArg())
	}

	if fs.NArg() == 1 {
		freq, err := strconv.ParseFloat(fs.Arg(0), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", fs.Arg(0), err)
		}

		cfg.Oscillator.Frequency = freq
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, output io.Writer) error {
	cfg, err := parseArgs(args, output)
	if err != nil {
		return err
	}

	osc, err := cfg.NewOscillator()
	if err != nil {
		return err
	}

	log.Printf("wave frequency, %.2f Hz, %v interpolation", osc.Frequency(), osc.Policy())

	if cfg.Render.Path != "" {
		err = renderFile(cfg, osc)
	} else {
		err = play(ctx, cfg, osc)
	}

	if err != nil {
		return err
	}

	log.Println("Finished.")

	return nil
}

func play(ctx context.Context, cfg *config.Config, osc *wavetable.Oscillator) error {
	dev, err := driver.New(cfg.Stream.Driver)
	if err != nil {
		return err
	}

	if lb, ok := dev.(*driver.Loopback); ok {
		lb.Realtime = cfg.Stream.Realtime
	}

	err = dev.Open(driver.Params{
		SampleRate:      cfg.Stream.SampleRate,
		FramesPerBuffer: cfg.Stream.FramesPerBuffer,
		Channels:        numChannels,
	}, osc.Process)
	if err != nil {
		return err
	}

	err = dev.Start()
	if err != nil {
		return errors.Join(err, dev.Close())
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	timer := time.NewTimer(cfg.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		log.Println("interrupted")
	case <-dev.Done():
	}

	return errors.Join(dev.Stop(), dev.Close())
}

func renderFile(cfg *config.Config, osc *wavetable.Oscillator) error {
	format, err := writer.ParseFileFormat(cfg.Render.Format)
	if err != nil {
		return err
	}

	fileRate := cfg.Stream.SampleRate
	opt := writer.Options{
		InputConverter: writer.NewNoConverter(cfg.Stream.FramesPerBuffer),
		Normalize:      cfg.Render.Normalize,
	}

	if cfg.Render.SampleRate > 0 && cfg.Render.SampleRate != cfg.Stream.SampleRate {
		fileRate = cfg.Render.SampleRate
		opt.ConvertSampleRate = true
		opt.InputSampleRate = cfg.Stream.SampleRate
		opt.SrConvQuality = cfg.Render.Quality
	}

	wr, err := writer.NewWithOptions(cfg.Render.Path, format, numChannels, fileRate, opt)
	if err != nil {
		return err
	}

	n, err := render.Render(osc.Process, wr, numChannels, cfg.Stream.FramesPerBuffer, cfg.TotalFrames())

	err = errors.Join(err, wr.Close())
	if err != nil {
		return err
	}

	log.Printf("rendered %d frames to %s (%v, %v Hz)", n, cfg.Render.Path, format, fileRate)

	return nil
}
