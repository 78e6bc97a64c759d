package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cutclub/cutclub-backend/internal/httperr"
)

func TestWriteBusiness_KnownCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handled := writeBusiness(c, httperr.ErrBusiness("slot_conflict"))

	assert.True(t, handled)
	assert.Equal(t, http.StatusConflict, w.Code)

	var body httperr.HTTPError
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "slot_conflict", body.Code)
	assert.Equal(t, "Conflito de horário.", body.Message)
}

func TestWriteBusiness_UnknownCodeSurfacesAs500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handled := writeBusiness(c, httperr.ErrBusiness("code_nobody_mapped"))

	assert.True(t, handled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteBusiness_PlainErrorPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handled := writeBusiness(c, assert.AnError)

	assert.False(t, handled)
	assert.Empty(t, w.Body.String())
}

func TestBusinessStatus_ErrorClasses(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"too_soon", http.StatusBadRequest},
		{"barber_not_found", http.StatusNotFound},
		{"slot_conflict", http.StatusConflict},
		{"duplicate_booking", http.StatusConflict},
		{"tier_mismatch", http.StatusConflict},
		{"entitlement_exhausted", http.StatusConflict},
		{"insufficient_balance", http.StatusBadRequest},
		{"payment_not_confirmed", http.StatusBadRequest},
	}

	for _, tt := range tests {
		m, ok := businessStatus[tt.code]
		assert.True(t, ok, tt.code)
		assert.Equal(t, tt.want, m.Status, tt.code)
	}
}
