package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

// Course represents a catalog entry. Price is stored in whole rupees; the
// gateway order amount is derived from it in paise at checkout time.
type Course struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title            string               `bson:"title" json:"title"`
	Description      string               `bson:"description" json:"description"`
	Instructor       primitive.ObjectID   `bson:"instructor" json:"instructor"`
	Price            int64                `bson:"price" json:"price"`
	EnrolledStudents []primitive.ObjectID `bson:"enrolled_students" json:"enrolledStudents"`
	Status           string               `bson:"status" json:"status"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}
