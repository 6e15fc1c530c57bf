// Package cli provides the command-line interface for frisangecal.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"frisangecal/internal/config"
	appLog "frisangecal/internal/log"
	"frisangecal/internal/source"
)

const version = "0.1.0-dev"

// textSource is what the pipeline needs from internal/source.
type textSource interface {
	Acquire(ctx context.Context, cfg config.Config) (string, error)
}

// newSource is swapped in tests.
var newSource = func(cfg config.Config) (textSource, error) {
	return source.NewAcquirer(cfg)
}

// Options holds raw flag values before they are merged into a Config.
type Options struct {
	ConfigPath  string
	Output      string
	PDFPath     string
	URL         string
	StartHour   int
	StartMinute int
	Duration    int
	SameDay     bool
	Debug       bool
	Extractor   string
	TikaURL     string
	Timeout     time.Duration
	Strict      bool
	Verify      bool
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return fail(err)
	}
	return 0
}

// fail reports a fatal error and returns the exit code. SilenceErrors
// keeps cobra from printing it a second time.
func fail(err error) int {
	appLog.Error("frisangecal failed", err)
	return 1
}

// NewRootCommand creates the single frisangecal command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "frisangecal (--pdf <file> | --url <url>)",
		Short: "Create the waste collection calendar for the commune of Frisange",
		Long: `Create the waste collection calendar for the commune of Frisange.

Reads the "Calendrier écologique" PDF, either from a local file or from a URL,
and writes an iCalendar file with one reminder per collection date.

By default the reminders are created for the day before collection. Use
--same-day to create them on collection day instead.`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			src, err := newSource(cfg)
			if err != nil {
				return err
			}
			_, err = Run(ctx, cfg, src)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Output, "out", config.DefaultOutput, "Output filename")
	f.StringVar(&opts.PDFPath, "pdf", "", "Path to calendar in PDF")
	f.StringVar(&opts.URL, "url", "", "URL to calendar in PDF")
	f.IntVar(&opts.StartHour, "event-start-hour", config.DefaultStartHour, "Start hour for events [0-23]")
	f.IntVar(&opts.StartMinute, "event-start-minute", config.DefaultStartMinute, "Start minute for events [0-59]")
	f.IntVar(&opts.Duration, "event-duration", config.DefaultDuration, "Event duration in minutes [10-60]")
	f.BoolVar(&opts.SameDay, "same-day", false, "Create the events on collection day instead of the day before")
	f.BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	f.StringVar(&opts.ConfigPath, "config", "", "Optional YAML settings file")
	f.StringVar(&opts.Extractor, "extractor", config.ExtractorPDF, "Text extractor (pdf|tika)")
	f.StringVar(&opts.TikaURL, "tika-url", config.DefaultTikaURL, "Apache Tika server URL, used with --extractor tika")
	f.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "Timeout for network requests")
	f.BoolVar(&opts.Strict, "strict", false, "Report lines that look like dates but could not be parsed")
	f.BoolVar(&opts.Verify, "verify", false, "Re-read the written calendar and check the event count")

	cmd.MarkFlagsMutuallyExclusive("pdf", "url")
	cmd.MarkFlagsOneRequired("pdf", "url")

	return cmd
}

// buildConfig merges defaults, the optional settings file and the flags.
// Flags only override the settings file when given explicitly.
func buildConfig(cmd *cobra.Command, opts *Options) (config.Config, error) {
	cfg := config.Default()

	if opts.ConfigPath != "" {
		file, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("loading config: %w", err)
		}
		cfg = cfg.Apply(file)
	}

	changed := cmd.Flags().Changed
	if changed("out") {
		cfg.Output = opts.Output
	}
	if changed("event-start-hour") {
		cfg.StartHour = opts.StartHour
	}
	if changed("event-start-minute") {
		cfg.StartMinute = opts.StartMinute
	}
	if changed("event-duration") {
		cfg.DurationMinutes = opts.Duration
	}
	if changed("same-day") {
		cfg.SameDay = opts.SameDay
	}
	if changed("extractor") {
		cfg.Extractor = opts.Extractor
	}
	if changed("tika-url") {
		cfg.TikaURL = opts.TikaURL
	}
	if changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	cfg.PDFPath = opts.PDFPath
	cfg.URL = opts.URL
	cfg.Debug = opts.Debug
	cfg.Strict = opts.Strict
	cfg.Verify = opts.Verify

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if cfg.Debug {
		appLog.SetLevel(appLog.LevelDebug)
	} else {
		appLog.SetLevel(appLog.LevelInfo)
	}
	return cfg, nil
}
