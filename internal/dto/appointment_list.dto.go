package dto

import (
	"time"

	"github.com/cutclub/cutclub-backend/internal/models"
)

// AppointmentListDTO is the client-facing row: who cuts, when, what it costs.
type AppointmentListDTO struct {
	ID            uint      `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	Kind          string    `json:"kind"`
	Channel       string    `json:"channel"`
	PriceCents    int64     `json:"price_cents"`
	PaymentStatus string    `json:"payment_status"`
	BarberName    string    `json:"barber_name"`
}

// AgendaItemDTO is the barber-facing row for the daily agenda.
type AgendaItemDTO struct {
	ID          uint      `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind"`
	Channel     string    `json:"channel"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
}

func FromAppointment(ap models.Appointment) AppointmentListDTO {
	return AppointmentListDTO{
		ID:            ap.ID,
		StartTime:     ap.StartTime,
		EndTime:       ap.EndTime,
		Status:        ap.Status,
		Kind:          ap.Kind,
		Channel:       ap.Channel,
		PriceCents:    ap.PriceCents,
		PaymentStatus: ap.PaymentStatus,
		BarberName:    ap.Barber.Name,
	}
}

func ToAgendaItem(ap models.Appointment) AgendaItemDTO {
	return AgendaItemDTO{
		ID:          ap.ID,
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime,
		Status:      ap.Status,
		Kind:        ap.Kind,
		Channel:     ap.Channel,
		Address:     ap.Address,
		Notes:       ap.Notes,
		ClientName:  ap.Client.Name,
		ClientPhone: ap.Client.Phone,
	}
}
