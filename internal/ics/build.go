// Package ics turns extracted collections into an iCalendar document.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"frisangecal/internal/config"
	"frisangecal/internal/model"
)

const (
	ProductID = "-//Calendrier Écologique Frisange//"
	Version   = "2.0"
	CalName   = "Calendrier Écologique Frisange"

	summaryPrefix = "🚮 "

	// localLayout is the DATE-TIME form used together with a TZID parameter.
	localLayout = "20060102T150405"
)

// Options controls how collection dates become reminder events.
type Options struct {
	Zone        *time.Location
	StartHour   int
	StartMinute int
	Duration    time.Duration

	// SameDay places the reminder on the collection day; otherwise it is
	// moved to the previous day.
	SameDay bool

	// Place is written to LOCATION.
	Place string

	// NewUID defaults to a random UUID.
	NewUID func() string
}

// OptionsFromConfig derives event options from a validated config.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	zone, err := cfg.TimeLocation()
	if err != nil {
		return Options{}, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return Options{
		Zone:        zone,
		StartHour:   cfg.StartHour,
		StartMinute: cfg.StartMinute,
		Duration:    cfg.Duration(),
		SameDay:     cfg.SameDay,
		Place:       cfg.Location,
	}, nil
}

// Event is one reminder, fully resolved.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// NewEvent builds the reminder for a single collection.
func NewEvent(c model.Collection, opts Options) Event {
	zone := opts.Zone
	if zone == nil {
		zone = time.Local
	}
	newUID := opts.NewUID
	if newUID == nil {
		newUID = uuid.NewString
	}

	k := c.Key
	start := time.Date(k.Year, time.Month(k.Month), k.Day, opts.StartHour, opts.StartMinute, 0, 0, zone)
	if !opts.SameDay {
		// Calendar-day step keeps the wall clock across DST changes.
		start = start.AddDate(0, 0, -1)
	}

	return Event{
		UID:         newUID(),
		Summary:     summaryPrefix + c.Details,
		Description: fmt.Sprintf("Collecte des déchets (%s): Matin %s", c.Details, k.String()),
		Location:    opts.Place,
		Start:       start,
		End:         start.Add(opts.Duration),
	}
}

// Events builds one reminder per collection, in date order.
func Events(set model.CollectionSet, opts Options) []Event {
	entries := set.Entries()
	out := make([]Event, 0, len(entries))
	for _, c := range entries {
		out = append(out, NewEvent(c, opts))
	}
	return out
}

// NewCalendar assembles the VCALENDAR. stamp is used as DTSTAMP for every
// event.
func NewCalendar(events []Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion(Version)
	cal.SetXWRCalName(CalName)
	if len(events) > 0 {
		cal.SetXWRTimezone(events[0].Start.Location().String())
	}

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(stamp)
		setLocalTime(ve, ical.ComponentPropertyDtStart, e.Start)
		setLocalTime(ve, ical.ComponentPropertyDtEnd, e.End)
		ve.SetSummary(e.Summary)
		ve.SetDescription(e.Description)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
	}
	return cal
}

// setLocalTime writes t as a local DATE-TIME with a TZID parameter, so
// clients show the reminder at the same wall clock time all year.
func setLocalTime(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	tzid := &ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{t.Location().String()}}
	ve.SetProperty(prop, t.Format(localLayout), tzid)
}
