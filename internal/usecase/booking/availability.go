package booking

import (
	"context"
	"time"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

type GetAvailability struct {
	repo   domain.Repository
	params Params
}

func NewGetAvailability(repo domain.Repository, params Params) *GetAvailability {
	return &GetAvailability{repo: repo, params: params}
}

// Execute lists the free slots of one barber on one day: the working-hours
// grid minus lunch, live appointments and slots too close to now.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	barberID uint,
	dateStr string,
) ([]domain.TimeSlot, error) {

	loc := timezone.Location(uc.params.Timezone)

	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		return nil, httperr.ErrBusiness("barber_not_found")
	}

	wh, err := uc.repo.GetWorkingHours(ctx, barberID, int(date.Weekday()))
	if err != nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return []domain.TimeSlot{}, nil
	}

	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	}

	dayStart := parseHM(wh.StartTime)
	dayEnd := parseHM(wh.EndTime)

	hasLunch := wh.LunchStart != "" && wh.LunchEnd != ""
	var lunchStart, lunchEnd time.Time
	if hasLunch {
		lunchStart = parseHM(wh.LunchStart)
		lunchEnd = parseHM(wh.LunchEnd)
	}

	appointments, err := uc.repo.ListBarberAppointments(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	minStart := timezone.NowIn(uc.params.Timezone).
		Add(time.Duration(uc.params.MinAdvanceMinutes) * time.Minute)

	slotDuration := time.Duration(uc.params.SlotMinutes) * time.Minute
	slots := []domain.TimeSlot{}

	for cur := dayStart; !cur.Add(slotDuration).After(dayEnd); cur = cur.Add(slotDuration) {

		slotStart := cur
		slotEnd := cur.Add(slotDuration)

		if slotStart.Before(minStart) {
			continue
		}

		if hasLunch && slotStart.Before(lunchEnd) && slotEnd.After(lunchStart) {
			continue
		}

		conflict := false
		for _, ap := range appointments {
			if !domain.IsLive(domain.Status(ap.Status)) {
				continue
			}
			if slotStart.Before(ap.EndTime) && slotEnd.After(ap.StartTime) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, domain.TimeSlot{
				Start: slotStart.Format("15:04"),
				End:   slotEnd.Format("15:04"),
			})
		}
	}

	return slots, nil
}
