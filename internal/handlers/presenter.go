package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cutclub/cutclub-backend/internal/httperr"
)

// businessStatus maps use case rejection codes onto HTTP responses. Every
// code the booking flow can return must appear here; unknown codes fall
// through to a 500 so they surface in the logs instead of hiding as 400s.
var businessStatus = map[string]struct {
	Status  int
	Message string
}{
	"invalid_date":          {http.StatusBadRequest, "Data inválida."},
	"invalid_date_or_time":  {http.StatusBadRequest, "Data ou hora inválida."},
	"invalid_channel":       {http.StatusBadRequest, "Canal de atendimento inválido."},
	"address_required":      {http.StatusBadRequest, "Endereço é obrigatório para atendimento em casa."},
	"too_soon":              {http.StatusBadRequest, "Horário inválido."},
	"outside_working_hours": {http.StatusBadRequest, "Fora do horário de atendimento."},

	"barber_not_found":      {http.StatusNotFound, "Barbeiro não encontrado."},
	"appointment_not_found": {http.StatusNotFound, "Agendamento não encontrado."},
	"plan_not_found":        {http.StatusNotFound, "Plano não encontrado."},
	"intent_not_found":      {http.StatusNotFound, "Pagamento não encontrado."},

	"slot_conflict":     {http.StatusConflict, "Conflito de horário."},
	"duplicate_booking": {http.StatusConflict, "Você já tem um agendamento neste horário."},
	"state_conflict":    {http.StatusConflict, "O agendamento não permite esta operação."},
	"tier_mismatch":     {http.StatusConflict, "Suas condições de preço mudaram, revise antes de confirmar."},

	"entitlement_exhausted": {http.StatusConflict, "Você já usou os cortes disponíveis neste período."},
	"insufficient_balance":  {http.StatusBadRequest, "Saldo de pontos insuficiente."},
	"payment_not_confirmed": {http.StatusBadRequest, "Pagamento não confirmado."},
	"intent_expired":        {http.StatusBadRequest, "Pagamento expirado."},
}

// writeBusiness translates a business error into its HTTP response.
// Returns false when err carries no business code.
func writeBusiness(c *gin.Context, err error) bool {
	code, ok := httperr.CodeOf(err)
	if !ok {
		return false
	}

	m, known := businessStatus[code]
	if !known {
		httperr.Internal(c, code, "Erro inesperado.")
		return true
	}

	httperr.Write(c, m.Status, code, m.Message)
	return true
}
