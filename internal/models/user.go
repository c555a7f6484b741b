package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User model
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName       string               `bson:"first_name" json:"firstName"`
	LastName        string               `bson:"last_name" json:"lastName"`
	Email           string               `bson:"email" json:"email"`
	HPassword       string               `bson:"password" json:"-"`
	Role            string               `bson:"role" json:"role"`
	EnrolledCourses []primitive.ObjectID `bson:"enrolled_courses" json:"enrolledCourses"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display in emails.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsEnrolled reports whether the user already holds an enrollment for the course.
func (u *User) IsEnrolled(courseID primitive.ObjectID) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
