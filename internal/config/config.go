package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutput      = "garbage_collection.ics"
	DefaultTimezone    = "Europe/Luxembourg"
	DefaultLocation    = "Frisange (Luxembourg)"
	DefaultTikaURL     = "http://localhost:9998"
	DefaultTimeout     = 30 * time.Second
	DefaultStartHour   = 20
	DefaultStartMinute = 0
	DefaultDuration    = 15

	ExtractorPDF  = "pdf"
	ExtractorTika = "tika"

	MinDuration = 10
	MaxDuration = 60
)

// Config is the complete configuration of a single run. It is built once
// by the CLI layer and passed by value into every stage.
type Config struct {
	// PDFPath and URL are mutually exclusive; exactly one is set.
	PDFPath string
	URL     string

	// Output is the .ics path as given by the user.
	Output string

	StartHour       int
	StartMinute     int
	DurationMinutes int

	// SameDay schedules reminders on the collection day instead of the
	// evening before.
	SameDay bool

	Debug  bool
	Strict bool
	Verify bool

	// KeepLeadingMonth keeps a month label found at offset 0 of the text.
	KeepLeadingMonth bool

	Timezone  string
	Location  string
	Extractor string
	TikaURL   string
	Timeout   time.Duration
}

// File is the on-disk YAML settings file. Every field is optional; unset
// fields leave the defaults alone.
type File struct {
	Timezone         *string        `yaml:"timezone"`
	Location         *string        `yaml:"location"`
	Extractor        *string        `yaml:"extractor"`
	TikaURL          *string        `yaml:"tika_url"`
	Timeout          *time.Duration `yaml:"timeout"`
	StartHour        *int           `yaml:"start_hour"`
	StartMinute      *int           `yaml:"start_minute"`
	DurationMinutes  *int           `yaml:"duration_minutes"`
	SameDay          *bool          `yaml:"same_day"`
	KeepLeadingMonth *bool          `yaml:"keep_leading_month"`
	Output           *string        `yaml:"out"`
}

// Default returns the configuration used when neither a settings file
// nor flags override anything.
func Default() Config {
	return Config{
		Output:          DefaultOutput,
		StartHour:       DefaultStartHour,
		StartMinute:     DefaultStartMinute,
		DurationMinutes: DefaultDuration,
		Timezone:        DefaultTimezone,
		Location:        DefaultLocation,
		Extractor:       ExtractorPDF,
		TikaURL:         DefaultTikaURL,
		Timeout:         DefaultTimeout,
	}
}

// Load reads a YAML settings file. Unlike flags, a missing file is an
// error: the path was asked for explicitly.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply returns c with every field set in f copied over.
func (c Config) Apply(f *File) Config {
	if f == nil {
		return c
	}
	if f.Timezone != nil {
		c.Timezone = *f.Timezone
	}
	if f.Location != nil {
		c.Location = *f.Location
	}
	if f.Extractor != nil {
		c.Extractor = *f.Extractor
	}
	if f.TikaURL != nil {
		c.TikaURL = *f.TikaURL
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.StartHour != nil {
		c.StartHour = *f.StartHour
	}
	if f.StartMinute != nil {
		c.StartMinute = *f.StartMinute
	}
	if f.DurationMinutes != nil {
		c.DurationMinutes = *f.DurationMinutes
	}
	if f.SameDay != nil {
		c.SameDay = *f.SameDay
	}
	if f.KeepLeadingMonth != nil {
		c.KeepLeadingMonth = *f.KeepLeadingMonth
	}
	if f.Output != nil {
		c.Output = *f.Output
	}
	return c
}

// Normalize fills in empty string fields with defaults so a partially
// written settings file still behaves.
func (c Config) Normalize() Config {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	c.Extractor = strings.ToLower(strings.TrimSpace(c.Extractor))
	if c.Extractor == "" {
		c.Extractor = ExtractorPDF
	}
	if c.TikaURL == "" {
		c.TikaURL = DefaultTikaURL
	}
	return c
}

// Validate checks the ranges and the pdf/url exclusivity.
func (c Config) Validate() error {
	switch {
	case c.PDFPath == "" && c.URL == "":
		return errors.New("one of --pdf or --url is required")
	case c.PDFPath != "" && c.URL != "":
		return errors.New("--pdf and --url are mutually exclusive")
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("event start hour %d out of range [0-23]", c.StartHour)
	}
	if c.StartMinute < 0 || c.StartMinute > 59 {
		return fmt.Errorf("event start minute %d out of range [0-59]", c.StartMinute)
	}
	if c.DurationMinutes < MinDuration || c.DurationMinutes > MaxDuration {
		return fmt.Errorf("event duration %d out of range [%d-%d]", c.DurationMinutes, MinDuration, MaxDuration)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Extractor {
	case ExtractorPDF, ExtractorTika:
	default:
		return fmt.Errorf("unknown extractor %q (want %s or %s)", c.Extractor, ExtractorPDF, ExtractorTika)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// TimeLocation resolves Timezone. Call after Validate.
func (c Config) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Duration is the event length.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}
