package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/razorpay"
	"github.com/studyhub/studyhub-gobackend/internal/services"
)

type fakeProcessor struct {
	captured []razorpay.PaymentEntity
	failed   []razorpay.PaymentEntity

	captureErr error
	order      *razorpay.Order
	orderErr   error
	lastCart   []string
}

func (f *fakeProcessor) CreateOrder(_ context.Context, _ string, courseIDs []string) (*razorpay.Order, error) {
	f.lastCart = courseIDs
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

func (f *fakeProcessor) HandleCapture(_ context.Context, entity razorpay.PaymentEntity) error {
	f.captured = append(f.captured, entity)
	return f.captureErr
}

func (f *fakeProcessor) HandleFailure(_ context.Context, entity razorpay.PaymentEntity) error {
	f.failed = append(f.failed, entity)
	return nil
}

func (f *fakeProcessor) ListPayments(context.Context, services.ListPaymentsOptions) ([]models.Payment, error) {
	return nil, nil
}

const testSecret = "whsec_test"

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, handler *PaymentHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)
	return rec
}

func capturedBody() []byte {
	return []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_123","order_id":"order_abc","amount":15000}}}}`)
}

func TestWebhookMissingSecretFailsClosed(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, "", zap.NewNop())

	rec := postWebhook(t, handler, capturedBody(), signBody(capturedBody()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, processor.captured)
}

func TestWebhookBadSignature(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	rec := postWebhook(t, handler, capturedBody(), "deadbeef")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, processor.captured, "unverified events must never reach the service")

	rec = postWebhook(t, handler, capturedBody(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, processor.captured)
}

func TestWebhookMalformedJSON(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	body := []byte(`{"event": "payment.captured"`)
	rec := postWebhook(t, handler, body, signBody(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, processor.captured)
}

func TestWebhookDispatchesCapture(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	rec := postWebhook(t, handler, capturedBody(), signBody(capturedBody()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	require.Len(t, processor.captured, 1)
	assert.Equal(t, "pay_123", processor.captured[0].ID)
	assert.Equal(t, int64(15000), processor.captured[0].Amount)
	assert.Empty(t, processor.failed)
}

func TestWebhookDispatchesFailure(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_fail","error_description":"Card declined"}}}}`)
	rec := postWebhook(t, handler, body, signBody(body))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, processor.failed, 1)
	assert.Equal(t, "Card declined", processor.failed[0].ErrorDescription)
	assert.Empty(t, processor.captured)
}

func TestWebhookUnknownEventAcked(t *testing.T) {
	processor := &fakeProcessor{}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	body := []byte(`{"event":"refund.created","payload":{"payment":{"entity":{"id":"pay_123"}}}}`)
	rec := postWebhook(t, handler, body, signBody(body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, processor.captured)
	assert.Empty(t, processor.failed)
}

func TestWebhookProcessingErrorReturns500(t *testing.T) {
	processor := &fakeProcessor{captureErr: errors.New("mongo: connection reset")}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	rec := postWebhook(t, handler, capturedBody(), signBody(capturedBody()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "transient failures must trigger gateway redelivery")
}

func TestCreateOrderEndpoint(t *testing.T) {
	processor := &fakeProcessor{order: &razorpay.Order{ID: "order_abc", Amount: 15000}}
	handler := NewPaymentHandler(processor, testSecret, zap.NewNop())

	body := []byte(`{"courseIds":["64f000000000000000000001"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/order", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), ctxKeyUserID, "64f000000000000000000002"))
	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_abc")
	assert.Equal(t, []string{"64f000000000000000000001"}, processor.lastCart)
}

func TestCreateOrderEndpointRequiresAuth(t *testing.T) {
	handler := NewPaymentHandler(&fakeProcessor{}, testSecret, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/payment/order", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
