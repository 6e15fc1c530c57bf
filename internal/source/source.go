// Package source acquires the raw text of the calendar PDF, either from a
// local file or from a URL.
package source

import (
	"context"
	"fmt"

	"frisangecal/internal/config"
	appLog "frisangecal/internal/log"
)

// Acquirer wires a Fetcher to an Extractor.
type Acquirer struct {
	Fetcher   *Fetcher
	Extractor Extractor
}

// NewAcquirer builds the fetcher and the extractor selected in cfg.
func NewAcquirer(cfg config.Config) (*Acquirer, error) {
	var x Extractor
	switch cfg.Extractor {
	case config.ExtractorPDF:
		x = PDFExtractor{}
	case config.ExtractorTika:
		x = NewTikaExtractor(cfg.TikaURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}
	return &Acquirer{
		Fetcher:   NewFetcher(cfg.Timeout),
		Extractor: x,
	}, nil
}

// Acquire returns the document text for the source named in cfg. A URL
// is downloaded first and the bytes handed to the extractor; a path is
// handed to the extractor as is.
func (a *Acquirer) Acquire(ctx context.Context, cfg config.Config) (string, error) {
	if cfg.URL != "" {
		body, err := a.Fetcher.Fetch(ctx, cfg.URL)
		if err != nil {
			return "", err
		}
		text, err := a.Extractor.FromBytes(ctx, body)
		if err != nil {
			return "", err
		}
		appLog.Debug("text extracted", "source", redactURL(cfg.URL), "chars", len(text))
		return text, nil
	}

	if cfg.PDFPath == "" {
		return "", fmt.Errorf("%w: no pdf path or url", ErrExtract)
	}
	text, err := a.Extractor.FromFile(ctx, cfg.PDFPath)
	if err != nil {
		return "", err
	}
	appLog.Debug("text extracted", "source", cfg.PDFPath, "chars", len(text))
	return text, nil
}
