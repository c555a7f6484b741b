package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/mailer"
	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/razorpay"
	"github.com/studyhub/studyhub-gobackend/internal/repository"
)

// PaymentStore is the data access the payment service needs.
type PaymentStore interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindCoursesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	FindPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	InsertPayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.EnrollmentTx) error) error
}

// OrderGateway creates orders with the payment gateway.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
}

// Notifier enqueues fire-and-forget email.
type Notifier interface {
	Enqueue(to, subject, htmlBody string)
}

type PaymentService struct {
	store    PaymentStore
	gateway  OrderGateway
	notifier Notifier
	logger   *zap.Logger
}

func NewPaymentService(store PaymentStore, gateway OrderGateway, notifier Notifier, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, notifier: notifier, logger: logger}
}

// CreateOrder validates the cart and registers an order with the gateway. It
// writes nothing locally; an order whose webhook never arrives is an
// abandoned checkout and leaves no trace.
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, courseIDs []string) (*razorpay.Order, error) {
	if len(courseIDs) == 0 {
		return nil, apperr.New(http.StatusBadRequest, "Please select at least one course")
	}

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "Invalid user id")
	}
	courseOIDs := make([]primitive.ObjectID, 0, len(courseIDs))
	for _, id := range courseIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperr.New(http.StatusBadRequest, "Invalid course IDs format")
		}
		courseOIDs = append(courseOIDs, oid)
	}

	user, err := s.store.FindUserByID(ctx, userOID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(http.StatusUnauthorized, "User not found")
		}
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch user", err)
	}

	courses, err := s.store.FindCoursesByIDs(ctx, courseOIDs)
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch courses", err)
	}
	if len(courses) != len(courseOIDs) {
		return nil, apperr.New(http.StatusNotFound, "One or more courses not found")
	}

	var totalAmount int64
	for _, course := range courses {
		if user.IsEnrolled(course.ID) {
			return nil, apperr.New(http.StatusBadRequest, fmt.Sprintf("Already enrolled in %s", course.Title))
		}
		totalAmount += course.Price
	}

	notes, err := models.OrderNotes{UserID: userOID, CourseIDs: courseOIDs}.Encode()
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to encode order notes", err)
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   totalAmount * 100, // paise
		Currency: "INR",
		Receipt:  "receipt_" + uuid.NewString(),
		Notes:    notes,
	})
	if err != nil {
		s.logger.Error("Gateway order creation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Wrap(http.StatusBadGateway, "Payment gateway error", err)
	}
	return order, nil
}

// HandleCapture processes a payment.captured event. Business-rule rejections
// (duplicate delivery, malformed notes, unresolvable user or courses, already
// enrolled) return nil so the transport acknowledges and the gateway stops
// retrying; only transient store failures propagate.
func (s *PaymentService) HandleCapture(ctx context.Context, entity razorpay.PaymentEntity) error {
	if entity.ID == "" {
		s.logger.Warn("Capture event without payment id", zap.String("order_id", entity.OrderID))
		return nil
	}

	// Primary defense against redelivery.
	if _, err := s.store.FindPaymentByTransactionID(ctx, entity.ID); err == nil {
		s.logger.Info("Duplicate capture ignored", zap.String("payment_id", entity.ID))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("dedup lookup for %s: %w", entity.ID, err)
	}

	notes, err := models.ParseOrderNotes(entity.Notes)
	if err != nil {
		s.logger.Warn("Capture event with invalid notes", zap.String("payment_id", entity.ID), zap.Error(err))
		return nil
	}

	user, err := s.store.FindUserByID(ctx, notes.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Capture event for unknown user",
				zap.String("payment_id", entity.ID), zap.String("user_id", notes.UserID.Hex()))
			return nil
		}
		return fmt.Errorf("fetch user %s: %w", notes.UserID.Hex(), err)
	}

	courses, err := s.store.FindCoursesByIDs(ctx, notes.CourseIDs)
	if err != nil {
		return fmt.Errorf("fetch courses: %w", err)
	}
	if len(courses) != len(notes.CourseIDs) {
		s.logger.Warn("Capture event course mismatch",
			zap.String("payment_id", entity.ID),
			zap.Int("requested", len(notes.CourseIDs)), zap.Int("found", len(courses)))
		return nil
	}

	newIDs := make([]primitive.ObjectID, 0, len(notes.CourseIDs))
	titles := make([]string, 0, len(courses))
	for _, course := range courses {
		if user.IsEnrolled(course.ID) {
			continue
		}
		newIDs = append(newIDs, course.ID)
		titles = append(titles, course.Title)
	}
	if len(newIDs) == 0 {
		s.logger.Info("Capture event for already-enrolled courses", zap.String("payment_id", entity.ID))
		return nil
	}

	currency := entity.Currency
	if currency == "" {
		currency = "INR"
	}

	// The ledger reflects the full original purchase; enrollment updates only
	// cover the set difference. All of it commits or aborts as one batch.
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.EnrollmentTx) error {
		for _, course := range courses {
			if err := tx.InsertPayment(ctx, &models.Payment{
				User:           user.ID,
				Instructor:     course.Instructor,
				Course:         course.ID,
				Amount:         course.Price,
				Currency:       currency,
				Status:         models.PaymentStatusSuccess,
				PaymentMethod:  models.PaymentMethodRazorpay,
				TransactionID:  entity.ID,
				GatewayOrderID: entity.OrderID,
			}); err != nil {
				return err
			}
		}
		if err := tx.AddEnrolledCourses(ctx, user.ID, newIDs); err != nil {
			return err
		}
		for _, courseID := range newIDs {
			if err := tx.AddEnrolledStudent(ctx, courseID, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent delivery of the same event won the race; the unique
			// success index rejected this writer. Already handled.
			s.logger.Info("Concurrent capture lost insert race", zap.String("payment_id", entity.ID))
			return nil
		}
		return fmt.Errorf("enrollment transaction for %s: %w", entity.ID, err)
	}

	s.logger.Info("Enrollment committed",
		zap.String("payment_id", entity.ID),
		zap.String("user_id", user.ID.Hex()),
		zap.Int("courses", len(newIDs)))

	s.notifier.Enqueue(user.Email, mailer.SubjectEnrollmentConfirmed,
		mailer.EnrollmentConfirmationBody(user.FullName(), entity.Amount/100, entity.OrderID, entity.ID, titles))
	return nil
}

// HandleFailure records a failed ledger row and notifies the user, best
// effort. Events without resolvable notes are acknowledged and dropped.
func (s *PaymentService) HandleFailure(ctx context.Context, entity razorpay.PaymentEntity) error {
	if entity.ID == "" {
		s.logger.Warn("Failure event without payment id", zap.String("order_id", entity.OrderID))
		return nil
	}

	notes, err := models.ParseOrderNotes(entity.Notes)
	if err != nil {
		s.logger.Warn("Failure event with invalid notes", zap.String("payment_id", entity.ID), zap.Error(err))
		return nil
	}

	currency := entity.Currency
	if currency == "" {
		currency = "INR"
	}
	if err := s.store.InsertPayment(ctx, &models.Payment{
		User:           notes.UserID,
		Course:         notes.CourseIDs[0],
		Amount:         entity.Amount / 100,
		Currency:       currency,
		Status:         models.PaymentStatusFailed,
		PaymentMethod:  models.PaymentMethodRazorpay,
		TransactionID:  entity.ID,
		GatewayOrderID: entity.OrderID,
	}); err != nil {
		return fmt.Errorf("record failed payment %s: %w", entity.ID, err)
	}

	user, err := s.store.FindUserByID(ctx, notes.UserID)
	if err != nil {
		s.logger.Warn("Failure event for unresolvable user",
			zap.String("payment_id", entity.ID), zap.Error(err))
		return nil
	}

	reason := entity.ErrorDescription
	if reason == "" {
		reason = entity.ErrorReason
	}
	if reason == "" {
		reason = "Payment processing failed"
	}
	s.notifier.Enqueue(user.Email, mailer.SubjectPaymentFailed,
		mailer.PaymentFailedBody(user.FullName(), entity.Amount/100, entity.OrderID, reason))
	return nil
}

// ListPaymentsOptions are the raw query filters from the ledger endpoints.
type ListPaymentsOptions struct {
	UserID    string
	Status    string
	StartDate string
	EndDate   string
}

var validPaymentStatuses = map[string]bool{
	models.PaymentStatusPending:  true,
	models.PaymentStatusSuccess:  true,
	models.PaymentStatusFailed:   true,
	models.PaymentStatusRefunded: true,
}

// ListPayments returns ledger rows with optional status, date-range and user
// filtering.
func (s *PaymentService) ListPayments(ctx context.Context, opts ListPaymentsOptions) ([]models.Payment, error) {
	filter := repository.PaymentFilter{}

	if opts.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(opts.UserID)
		if err != nil {
			return nil, apperr.New(http.StatusBadRequest, "Invalid user id")
		}
		filter.User = &oid
	}
	if opts.Status != "" {
		if !validPaymentStatuses[opts.Status] {
			return nil, apperr.New(http.StatusBadRequest, "Invalid status filter, must be pending, success, failed or refunded")
		}
		filter.Status = &opts.Status
	}
	if opts.StartDate != "" && opts.EndDate != "" {
		start, err := time.Parse(time.RFC3339, opts.StartDate)
		if err != nil {
			return nil, apperr.New(http.StatusBadRequest, "Invalid start_date format")
		}
		end, err := time.Parse(time.RFC3339, opts.EndDate)
		if err != nil {
			return nil, apperr.New(http.StatusBadRequest, "Invalid end_date format")
		}
		filter.From = &start
		filter.To = &end
	}

	payments, err := s.store.ListPayments(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch payments", err)
	}
	return payments, nil
}
