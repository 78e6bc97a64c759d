package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ===============================
// Idempotency Keys
// ===============================

// DeriveKey computes the booking idempotency key from the client identity,
// the barber and the slot start. Always derived server-side; client-supplied
// keys are ignored so the key can never disagree with the request content.
func DeriveKey(clientEmail string, barberID uint, start time.Time) string {
	email := strings.ToLower(strings.TrimSpace(clientEmail))
	raw := fmt.Sprintf("%s|%d|%s", email, barberID, start.UTC().Format(time.RFC3339))

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// KeyFromCheckoutRef derives the idempotency key for appointments created by
// gateway checkout events, so a redelivered event maps onto the same key.
func KeyFromCheckoutRef(ref string) string {
	sum := sha256.Sum256([]byte("checkout|" + ref))
	return hex.EncodeToString(sum[:])
}
