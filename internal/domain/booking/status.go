package booking

import "github.com/cutclub/cutclub-backend/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

// IsLive reports whether the status still occupies the barber's agenda.
func IsLive(s Status) bool {
	return s == StatusBooked || s == StatusConfirmed
}

// LiveStatuses are the states considered by slot-conflict checks.
func LiveStatuses() []string {
	return []string{string(StatusBooked), string(StatusConfirmed)}
}

func InitialStatus() Status {
	return StatusBooked
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusBooked {
		return httperr.ErrBusiness("state_conflict")
	}
	return nil
}

func CanComplete(current Status) error {
	if !IsLive(current) {
		return httperr.ErrBusiness("state_conflict")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if !IsLive(current) {
		return httperr.ErrBusiness("state_conflict")
	}
	return nil
}

func CanCancel(current Status) error {
	if !IsLive(current) {
		return httperr.ErrBusiness("state_conflict")
	}
	return nil
}
