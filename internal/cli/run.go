package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"frisangecal/internal/config"
	"frisangecal/internal/extract"
	"frisangecal/internal/ics"
	appLog "frisangecal/internal/log"
)

// Run executes the whole pipeline for cfg and returns the path of the
// written calendar.
func Run(ctx context.Context, cfg config.Config, src textSource) (string, error) {
	if cfg.SameDay {
		appLog.Info("events are created for collection day")
	} else {
		appLog.Info("events are created for the day before collection; use --same-day to override")
	}

	text, err := src.Acquire(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("acquiring calendar text: %w", err)
	}

	res, err := extract.Extract(text, extract.Options{
		KeepLeadingMonth: cfg.KeepLeadingMonth,
		Strict:           cfg.Strict,
	})
	if err != nil {
		return "", fmt.Errorf("extracting events: %w", err)
	}
	for _, w := range res.Warnings {
		appLog.Warn("extraction warning", "detail", w.String())
	}

	opts, err := ics.OptionsFromConfig(cfg)
	if err != nil {
		return "", err
	}
	events := ics.Events(res.Collections, opts)
	cal := ics.NewCalendar(events, time.Now())

	path, err := ics.WriteFile(cal, cfg.Output)
	if err != nil {
		return "", err
	}
	appLog.Info("ICS file saved", "path", path, "events", len(events))

	if cfg.Verify {
		if err := verify(path, len(events)); err != nil {
			return path, err
		}
		appLog.Info("calendar verified", "path", path)
	}
	return path, nil
}

func verify(path string, want int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	defer f.Close()

	parsed, err := ics.Parse(f)
	if err != nil {
		return fmt.Errorf("verify: parsing %s: %w", path, err)
	}
	if len(parsed.Events) != want {
		return fmt.Errorf("verify: %s has %d events, want %d", path, len(parsed.Events), want)
	}
	return nil
}
