package ics

import (
	"encoding/hex"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"golang.org/x/crypto/sha3"

	"github.com/definite-d/complendar/internal/model"
)

// uidDomain suffixes every generated UID, RFC 5545 style.
const uidDomain = "complendar.event"

// yearly is the shared recurrence rule: repeat every year, unbounded. The
// entry's stored year only anchors the first occurrence.
var yearly = func() string {
	r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.YEARLY})
	if err != nil {
		return "FREQ=YEARLY"
	}
	return r.String()
}()

// Synthesize derives the recurring all-day event for one entry. The
// result is a pure function of (name, date): re-running a conversion on
// identical input reproduces byte-identical events, so importers see "the
// same events" rather than duplicates.
func Synthesize(entry model.Entry) *ical.VEvent {
	owner := possessive(entry.Name)

	event := ical.NewEvent(contentUID(entry))
	event.SetSummary(owner + " Birthday")
	event.SetDescription("Celebrate " + entry.Name + "'s birthday 🎂")
	event.SetProperty(ical.ComponentPropertyCategories, "BIRTHDAY")
	event.SetAllDayStartAt(entry.Date)
	// Birthdays must not block free/busy time.
	event.SetTimeTransparency(ical.TransparencyTransparent)
	event.AddRrule(yearly)

	dayBefore := event.AddAlarm()
	dayBefore.SetAction(ical.ActionDisplay)
	dayBefore.SetTrigger("-P1D")
	dayBefore.SetDescription("Tomorrow is " + owner + " birthday!")

	dayOf := event.AddAlarm()
	dayOf.SetAction(ical.ActionDisplay)
	dayOf.SetTrigger("PT0S")
	dayOf.SetDescription("Today is " + owner + " birthday! 🎉")

	return event
}

// contentUID hashes "<name> <ISO date>" with SHA3-256 and formats the
// first 128 bits as a UUID. Content-derived, so it is stable across runs.
func contentUID(entry model.Entry) string {
	sum := sha3.Sum256([]byte(entry.Name + " " + entry.Date.Format("2006-01-02")))
	h := hex.EncodeToString(sum[:16])
	return fmt.Sprintf("%s-%s-%s-%s-%s@%s",
		h[:8], h[8:12], h[12:16], h[16:20], h[20:32], uidDomain)
}

// possessive appends 's, or a bare apostrophe when the name already ends
// in s ("Ana's", "Chris'").
func possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}
