package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cutclub/cutclub-backend/internal/models"
)

// AppointmentICS renders a single appointment as an iCalendar document so the
// client can drop it into Google Calendar / Apple Calendar. The UID is stable
// per appointment, which makes re-downloads update the same event instead of
// duplicating it.
func AppointmentICS(ap *models.Appointment, shopAddress string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//CutClub//Agenda//PT-BR")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("appointment-%d@cutclub.app", ap.ID))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, ap.StartTime.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, ap.EndTime.UTC())
	event.Props.SetText(ical.PropSummary, summaryFor(ap))
	event.Props.SetText(ical.PropDescription, descriptionFor(ap))
	event.Props.SetText(ical.PropStatus, statusFor(ap))

	if loc := locationFor(ap, shopAddress); loc != "" {
		event.Props.SetText(ical.PropLocation, loc)
	}

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryFor(ap *models.Appointment) string {
	if ap.Barber.Name != "" {
		return fmt.Sprintf("Corte com %s - CutClub", ap.Barber.Name)
	}
	return "Corte - CutClub"
}

func descriptionFor(ap *models.Appointment) string {
	desc := fmt.Sprintf("Agendamento #%d", ap.ID)
	if ap.Notes != "" {
		desc += "\n" + ap.Notes
	}
	return desc
}

func locationFor(ap *models.Appointment, shopAddress string) string {
	if ap.Channel == "home" {
		return ap.Address
	}
	return shopAddress
}

// statusFor maps our lifecycle onto the three VEVENT statuses calendars
// understand.
func statusFor(ap *models.Appointment) string {
	switch ap.Status {
	case "canceled", "no_show":
		return "CANCELLED"
	case "booked":
		return "TENTATIVE"
	default:
		return "CONFIRMED"
	}
}
