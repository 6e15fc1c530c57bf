// Package extract recovers collection dates from the plain text of the
// Frisange waste calendar.
//
// The text is expected to contain a "CALENDRIER ÉCOLOGIQUE <year>" header
// followed by one section per month. Each section starts with the month
// label followed by a slash ("Mars/...") and lists one collection per line:
//
//	5 Lun/01 Déchets résiduels
//
// Everything that does not look like such a line is ignored.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	appLog "frisangecal/internal/log"
	"frisangecal/internal/model"
)

// Months are the labels used in the PDF, in calendar order.
var Months = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// ErrYearNotFound is returned when the document has no year header.
var ErrYearNotFound = errors.New("year header not found")

var (
	yearPattern = regexp.MustCompile(`CALENDRIER ÉCOLOGIQUE (\d{4})`)

	// \w and \s are ASCII-only in RE2. Both are spelled out so accented
	// weekday abbreviations and non-breaking spaces still match.
	linePattern = regexp.MustCompile(`^(\d{1,2})[\s\v\p{Z}\x{85}][\p{L}\p{N}_]{3}/[\p{L}\p{N}_]{2}[\s\v\p{Z}\x{85}](.*)$`)

	leadingDigit = regexp.MustCompile(`^\d`)
)

// Options tunes the scan. The zero value matches the historical behavior.
type Options struct {
	// KeepLeadingMonth keeps a month label found at offset 0. By default
	// such a label is treated as absent.
	KeepLeadingMonth bool

	// Strict reports lines that start with a digit but do not match the
	// collection pattern.
	Strict bool
}

// Result is the outcome of Extract.
type Result struct {
	Year        int
	Spans       []model.MonthSpan
	Collections model.CollectionSet
	Warnings    []model.Warning
}

// Extract runs the whole scan: year, month spans, then collection lines.
func Extract(text string, opts Options) (Result, error) {
	year, err := Year(text)
	if err != nil {
		return Result{}, err
	}

	spans, warnings := Spans(text, opts)
	if len(spans) == 0 {
		warnings = append(warnings, model.Warning{Message: "no month labels found"})
	}

	b := model.NewCollectionBuilder()
	for _, span := range spans {
		warnings = append(warnings, scanSpan(b, text[span.Start:span.End], span, year, opts)...)
	}

	res := Result{
		Year:        year,
		Spans:       spans,
		Collections: b.Build(),
		Warnings:    warnings,
	}
	appLog.Info("events found", "count", res.Collections.Len(), "year", year, "months", len(spans))
	return res, nil
}

// Year returns the four-digit year from the calendar header.
func Year(text string) (int, error) {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, ErrYearNotFound
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrYearNotFound, err)
	}
	return year, nil
}

// monthOffset returns where "<label>/" first occurs in text.
func monthOffset(text, label string, keepLeading bool) (int, bool) {
	pos := strings.Index(text, label+"/")
	if pos < 0 {
		return 0, false
	}
	if pos == 0 && !keepLeading {
		return 0, false
	}
	return pos, true
}

// Spans locates each month section. Spans are ordered by month, not by
// position in the text: a span runs from its own label up to the label of
// the next month found. When the text lists months out of calendar order
// that boundary lies before the start; such a span is extended to the end
// of the text and a warning is returned.
func Spans(text string, opts Options) ([]model.MonthSpan, []model.Warning) {
	var spans []model.MonthSpan
	for i, label := range Months {
		pos, ok := monthOffset(text, label, opts.KeepLeadingMonth)
		if !ok {
			continue
		}
		spans = append(spans, model.MonthSpan{Label: label, Month: i + 1, Start: pos})
	}

	var warnings []model.Warning
	for i := range spans {
		end := len(text)
		if i+1 < len(spans) {
			end = spans[i+1].Start
		}
		if end < spans[i].Start {
			warnings = append(warnings, model.Warning{
				Month:   spans[i].Label,
				Message: fmt.Sprintf("next month %s appears earlier in the text; span extended to end of text", spans[i+1].Label),
			})
			end = len(text)
		}
		spans[i].End = end
	}
	return spans, warnings
}

// ParseLine matches a single collection line and returns its day and
// details.
func ParseLine(line string) (day int, details string, ok bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return day, m[2], true
}

// validDate reports whether day exists in month of year. time.Date
// normalizes overflow, so 30 February would otherwise become 2 March.
func validDate(year, month, day int) bool {
	if day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}

func scanSpan(b *model.CollectionBuilder, segment string, span model.MonthSpan, year int, opts Options) []model.Warning {
	var warnings []model.Warning
	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimSuffix(line, "\r")

		day, details, ok := ParseLine(line)
		if !ok {
			if opts.Strict && leadingDigit.MatchString(line) {
				warnings = append(warnings, model.Warning{Month: span.Label, Line: line, Message: "line skipped"})
			}
			continue
		}
		if !validDate(year, span.Month, day) {
			warnings = append(warnings, model.Warning{Month: span.Label, Line: line, Message: "day out of range"})
			continue
		}

		key := model.CollectionKey{Day: day, Month: span.Month, Year: year}
		b.Put(key, details)
		appLog.Debug("extracted event", "date", key.String(), "details", details)
	}
	return warnings
}
