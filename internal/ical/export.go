// Package ical renders events as RFC 5545 iCalendar documents for download
// and import into external calendar apps.
package ical

import (
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/eventsync/eventsync/internal/database"
)

const productID = "-//EventSync//EN"

// WriteEvent encodes a single event as a VCALENDAR document.
func WriteEvent(w io.Writer, event *database.Event) error {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	cal.Children = append(cal.Children, toVEvent(event))

	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return nil
}

// toVEvent converts an event to an ical.Component (VEVENT).
func toVEvent(event *database.Event) *goical.Component {
	ve := goical.NewComponent(goical.CompEvent)
	ve.Props.SetText(goical.PropUID, fmt.Sprintf("%s@eventsync", event.ID))
	ve.Props.SetText(goical.PropSummary, event.Title)
	ve.Props.SetDateTime(goical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(goical.PropDateTimeStart, event.StartTime)
	if event.EndTime != nil {
		ve.Props.SetDateTime(goical.PropDateTimeEnd, *event.EndTime)
	}

	if event.Description != "" {
		ve.Props.SetText(goical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(goical.PropLocation, event.Location)
	}
	if event.Owner != nil {
		p := goical.NewProp(goical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", event.Owner.Email))
		if event.Owner.Name != nil && *event.Owner.Name != "" {
			p.Params.Set(goical.ParamCommonName, *event.Owner.Name)
		}
		ve.Props.Add(p)
	}
	for _, inv := range event.Invitations {
		p := goical.NewProp(goical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", inv.InviteeEmail))
		ve.Props.Add(p)
	}
	return ve
}
