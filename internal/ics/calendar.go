package ics

import (
	ical "github.com/arran4/golang-ical"
)

const productID = "-//Complendar//EN"

// Assemble wraps synthesized events into one calendar document carrying
// the fixed product metadata. Zero events is a legal, empty calendar.
func Assemble(events []*ical.VEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetVersion("2.0")
	cal.SetProductId(productID)
	for _, event := range events {
		cal.AddVEvent(event)
	}
	return cal
}
