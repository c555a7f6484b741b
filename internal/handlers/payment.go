package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/razorpay"
	"github.com/studyhub/studyhub-gobackend/internal/services"
)

// SignatureHeader is the webhook signature header sent by the gateway.
const SignatureHeader = "X-Razorpay-Signature"

// PaymentProcessor is what the payment endpoints need from the service layer.
type PaymentProcessor interface {
	CreateOrder(ctx context.Context, userID string, courseIDs []string) (*razorpay.Order, error)
	HandleCapture(ctx context.Context, entity razorpay.PaymentEntity) error
	HandleFailure(ctx context.Context, entity razorpay.PaymentEntity) error
	ListPayments(ctx context.Context, opts services.ListPaymentsOptions) ([]models.Payment, error)
}

type PaymentHandler struct {
	service       PaymentProcessor
	webhookSecret string
	logger        *zap.Logger
}

func NewPaymentHandler(service PaymentProcessor, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, webhookSecret: webhookSecret, logger: logger}
}

type createOrderRequest struct {
	CourseIDs []string `json:"courseIds"`
}

// CreateOrder handles POST /api/payment/order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		apperr.HandleError(w, apperr.New(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Invalid request body"))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, req.CourseIDs)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// Webhook handles POST /api/payment/webhook. The signature is computed over
// the exact body bytes, so the body must be read raw before any parsing.
// Non-200 is returned only for local failures worth a gateway retry; every
// verified-but-unprocessable event is acknowledged so redelivery stops.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		// Fail closed: never accept unverifiable events.
		h.logger.Error("Webhook secret not configured")
		apperr.HandleError(w, apperr.New(http.StatusInternalServerError, "Server configuration error"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Failed to read request body"))
		return
	}

	if !razorpay.VerifySignature(body, r.Header.Get(SignatureHeader), h.webhookSecret) {
		h.logger.Warn("Webhook signature mismatch")
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Invalid signature"))
		return
	}

	var event razorpay.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("Webhook payload is not valid JSON", zap.Error(err))
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Malformed payload"))
		return
	}

	h.logger.Info("Webhook event received",
		zap.String("event", event.Event),
		zap.String("order_id", event.Payload.Payment.Entity.OrderID))

	switch event.Event {
	case razorpay.EventPaymentCaptured:
		err = h.service.HandleCapture(r.Context(), event.Payload.Payment.Entity)
	case razorpay.EventPaymentFailed:
		err = h.service.HandleFailure(r.Context(), event.Payload.Payment.Entity)
	default:
		h.logger.Info("Unhandled webhook event", zap.String("event", event.Event))
	}
	if err != nil {
		h.logger.Error("Webhook processing failed", zap.String("event", event.Event), zap.Error(err))
		apperr.HandleError(w, apperr.Wrap(http.StatusInternalServerError, "Webhook processing failed", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ListPayments handles GET /api/payments (admin)
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	opts := services.ListPaymentsOptions{
		UserID:    r.URL.Query().Get("user_id"),
		Status:    r.URL.Query().Get("status"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	payments, err := h.service.ListPayments(r.Context(), opts)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"payments": payments,
	})
}

// ListMyPayments handles GET /api/payments/me
func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		apperr.HandleError(w, apperr.New(http.StatusUnauthorized, "Authentication required"))
		return
	}
	opts := services.ListPaymentsOptions{
		UserID:    userID,
		Status:    r.URL.Query().Get("status"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	payments, err := h.service.ListPayments(r.Context(), opts)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"payments": payments,
	})
}
