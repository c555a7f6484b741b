package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studyhub/studyhub-gobackend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index, such as
	// a second success ledger row for the same (transaction, course) pair or
	// a re-registered email address.
	ErrDuplicate = errors.New("duplicate document")
)

// PaymentFilter narrows ledger listings. Nil fields match everything.
type PaymentFilter struct {
	User   *primitive.ObjectID
	Status *string
	From   *time.Time
	To     *time.Time
}

// EnrollmentTx is the unit of work handed to the enrollment transaction
// callback. Every write issued through it commits or aborts as one batch, so
// a crash mid-update cannot leave User/Course enrollment back-references
// asymmetric.
type EnrollmentTx interface {
	InsertPayment(ctx context.Context, payment *models.Payment) error
	AddEnrolledCourses(ctx context.Context, userID primitive.ObjectID, courseIDs []primitive.ObjectID) error
	AddEnrolledStudent(ctx context.Context, courseID, userID primitive.ObjectID) error
}
