package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const PaymentMethodRazorpay = "razorpay"

// Payment is one row of the append-only ledger: one row per (course, payment
// attempt outcome). Rows are never updated in place; refunds and retries get
// new rows. Amount is in whole rupees, matching Course.Price.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Instructor     primitive.ObjectID `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Course         primitive.ObjectID `bson:"course" json:"course"`
	Amount         int64              `bson:"amount" json:"amount"`
	Currency       string             `bson:"currency" json:"currency"`
	Status         string             `bson:"status" json:"status"`
	PaymentMethod  string             `bson:"payment_method" json:"paymentMethod"`
	TransactionID  string             `bson:"transaction_id" json:"transactionId"`
	GatewayOrderID string             `bson:"gateway_order_id" json:"gatewayOrderId"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
