package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Webhook event types the application acts on. Everything else is
// acknowledged and ignored so the gateway stops redelivering.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEvent is the gateway's event envelope. The payment entity is nested
// two levels deep in the payload.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentEntity is the captured or failed payment as echoed by the gateway.
// Amount is in paise. Notes carries the correlation envelope attached at
// order creation.
type PaymentEntity struct {
	ID               string            `json:"id"`
	OrderID          string            `json:"order_id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Method           string            `json:"method"`
	Notes            map[string]string `json:"notes"`
	ErrorDescription string            `json:"error_description"`
	ErrorReason      string            `json:"error_reason"`
}

// VerifySignature checks the webhook signature header against an HMAC-SHA256
// over the exact raw body bytes. The comparison is constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
