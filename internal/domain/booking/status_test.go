package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
)

func TestIsLive(t *testing.T) {
	assert.True(t, IsLive(StatusBooked))
	assert.True(t, IsLive(StatusConfirmed))
	assert.False(t, IsLive(StatusCompleted))
	assert.False(t, IsLive(StatusCanceled))
	assert.False(t, IsLive(StatusNoShow))
}

func TestConfirm(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusBooked)}
	err := Confirm(ap, now)

	assert.NoError(t, err)
	assert.Equal(t, string(StatusConfirmed), ap.Status)
	if assert.NotNil(t, ap.ConfirmedAt) {
		assert.Equal(t, now, *ap.ConfirmedAt)
	}
}

func TestConfirm_OnlyFromBooked(t *testing.T) {
	now := time.Now()

	for _, s := range []Status{StatusConfirmed, StatusCompleted, StatusCanceled, StatusNoShow} {
		ap := &models.Appointment{Status: string(s)}
		err := Confirm(ap, now)

		assert.Error(t, err, "confirm from %s", s)
		assert.True(t, httperr.IsBusiness(err, "state_conflict"))
		assert.Equal(t, string(s), ap.Status)
	}
}

func TestComplete_FromBookedAndConfirmed(t *testing.T) {
	now := time.Now()

	for _, s := range []Status{StatusBooked, StatusConfirmed} {
		ap := &models.Appointment{Status: string(s)}
		err := Complete(ap, now)

		assert.NoError(t, err, "complete from %s", s)
		assert.Equal(t, string(StatusCompleted), ap.Status)
		assert.NotNil(t, ap.CompletedAt)
	}
}

func TestComplete_RejectsTerminalStates(t *testing.T) {
	now := time.Now()

	for _, s := range []Status{StatusCompleted, StatusCanceled, StatusNoShow} {
		ap := &models.Appointment{Status: string(s)}
		err := Complete(ap, now)

		assert.Error(t, err, "complete from %s", s)
		assert.True(t, httperr.IsBusiness(err, "state_conflict"))
	}
}

func TestCancel(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusConfirmed)}
	err := Cancel(ap, "client_request", now)

	assert.NoError(t, err)
	assert.Equal(t, string(StatusCanceled), ap.Status)
	assert.Equal(t, "client_request", ap.CancelReason)
	if assert.NotNil(t, ap.CanceledAt) {
		assert.Equal(t, now, *ap.CanceledAt)
	}
}

func TestCancel_Twice(t *testing.T) {
	now := time.Now()

	ap := &models.Appointment{Status: string(StatusBooked)}
	assert.NoError(t, Cancel(ap, "client_request", now))

	err := Cancel(ap, "client_request", now)
	assert.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "state_conflict"))
}

func TestMarkNoShow(t *testing.T) {
	now := time.Now()

	ap := &models.Appointment{Status: string(StatusConfirmed)}
	err := MarkNoShow(ap, now)

	assert.NoError(t, err)
	assert.Equal(t, string(StatusNoShow), ap.Status)

	// Terminal; nothing moves out of no_show.
	assert.Error(t, Complete(ap, now))
	assert.Error(t, Cancel(ap, "x", now))
}
