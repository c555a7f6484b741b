package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	secret := "whsec_test"

	assert.True(t, VerifySignature(body, sign(body, secret), secret))
	assert.False(t, VerifySignature(body, sign(body, "other-secret"), secret), "wrong secret")
	assert.False(t, VerifySignature([]byte(`{"event":"payment.captured"} `), sign(body, secret), secret),
		"signature is over the exact raw bytes")
	assert.False(t, VerifySignature(body, "", secret), "empty signature header")
	assert.False(t, VerifySignature(body, "deadbeef", secret))
}

func TestWebhookEventDecoding(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_123",
					"order_id": "order_abc",
					"amount": 15000,
					"currency": "INR",
					"method": "card",
					"notes": {"v": "1", "userId": "a", "courseIds": "[\"b\"]"}
				}
			}
		}
	}`)

	var event WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventPaymentCaptured, event.Event)

	entity := event.Payload.Payment.Entity
	assert.Equal(t, "pay_123", entity.ID)
	assert.Equal(t, "order_abc", entity.OrderID)
	assert.Equal(t, int64(15000), entity.Amount)
	assert.Equal(t, "1", entity.Notes["v"])
}

func TestWebhookEventFailureFields(t *testing.T) {
	raw := []byte(`{
		"event": "payment.failed",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_fail",
					"error_description": "Card declined",
					"error_reason": "payment_failed"
				}
			}
		}
	}`)

	var event WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventPaymentFailed, event.Event)
	assert.Equal(t, "Card declined", event.Payload.Payment.Entity.ErrorDescription)
	assert.Equal(t, "payment_failed", event.Payload.Payment.Entity.ErrorReason)
}
