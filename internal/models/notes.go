package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderNotes is the correlation envelope smuggled through the gateway order's
// opaque notes field and echoed back on webhook callbacks. It is never stored
// locally; its integrity is covered by the webhook signature over the payload
// that carries it. The envelope is versioned so legacy or hand-crafted notes
// fail the schema check deterministically.
type OrderNotes struct {
	UserID    primitive.ObjectID
	CourseIDs []primitive.ObjectID
}

const orderNotesVersion = 1

var ErrInvalidNotes = errors.New("invalid order notes")

// Encode flattens the envelope into the string key/value map Razorpay accepts
// as order notes. Course ids travel as a JSON-encoded array in a single key.
func (n OrderNotes) Encode() (map[string]string, error) {
	if n.UserID.IsZero() || len(n.CourseIDs) == 0 {
		return nil, ErrInvalidNotes
	}
	ids := make([]string, 0, len(n.CourseIDs))
	for _, id := range n.CourseIDs {
		ids = append(ids, id.Hex())
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"v":         strconv.Itoa(orderNotesVersion),
		"userId":    n.UserID.Hex(),
		"courseIds": string(raw),
	}, nil
}

// ParseOrderNotes validates a notes map echoed back by the gateway. Any
// missing key, unknown version, malformed id or empty course list yields
// ErrInvalidNotes; callers treat that as a permanently-unprocessable event.
func ParseOrderNotes(notes map[string]string) (OrderNotes, error) {
	if len(notes) == 0 {
		return OrderNotes{}, ErrInvalidNotes
	}
	if v, err := strconv.Atoi(notes["v"]); err != nil || v != orderNotesVersion {
		return OrderNotes{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidNotes, notes["v"])
	}
	userID, err := primitive.ObjectIDFromHex(notes["userId"])
	if err != nil {
		return OrderNotes{}, fmt.Errorf("%w: bad userId", ErrInvalidNotes)
	}
	var rawIDs []string
	if err := json.Unmarshal([]byte(notes["courseIds"]), &rawIDs); err != nil || len(rawIDs) == 0 {
		return OrderNotes{}, fmt.Errorf("%w: bad courseIds", ErrInvalidNotes)
	}
	courseIDs := make([]primitive.ObjectID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return OrderNotes{}, fmt.Errorf("%w: bad course id %q", ErrInvalidNotes, raw)
		}
		courseIDs = append(courseIDs, id)
	}
	return OrderNotes{UserID: userID, CourseIDs: courseIDs}, nil
}
