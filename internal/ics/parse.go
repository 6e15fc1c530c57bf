package ics

import (
	"errors"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEvent is a VEVENT read back from a serialized calendar.
type ParsedEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// ParsedCalendar holds the calendar-level properties and events of a
// serialized document.
type ParsedCalendar struct {
	ProductID string
	Version   string
	Events    []ParsedEvent
}

// Parse reads an iCalendar document. Start and End are resolved through
// their TZID parameter by the underlying library.
func Parse(r io.Reader) (ParsedCalendar, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return ParsedCalendar{}, err
	}

	var out ParsedCalendar
	for _, p := range cal.CalendarProperties {
		switch p.IANAToken {
		case string(ical.PropertyProductId):
			out.ProductID = p.Value
		case string(ical.PropertyVersion):
			out.Version = p.Value
		}
	}

	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			return ParsedCalendar{}, err
		}
		out.Events = append(out.Events, ev)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = end
	return out, nil
}
