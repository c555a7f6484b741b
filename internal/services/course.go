package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/repository"
)

// CourseStore is the data access the course service needs.
type CourseStore interface {
	InsertCourse(ctx context.Context, course *models.Course) (primitive.ObjectID, error)
	FindCourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	FindCoursesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	ListPublishedCourses(ctx context.Context) ([]models.Course, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type CourseService struct {
	store  CourseStore
	logger *zap.Logger
}

func NewCourseService(store CourseStore, logger *zap.Logger) *CourseService {
	return &CourseService{store: store, logger: logger}
}

// CreateCourse publishes a new catalog entry owned by the instructor.
func (s *CourseService) CreateCourse(ctx context.Context, instructorID, title, description string, price int64) (*models.Course, error) {
	instructor, err := primitive.ObjectIDFromHex(instructorID)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "Invalid instructor id")
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperr.New(http.StatusBadRequest, "Title and description are required")
	}
	if price < 0 {
		return nil, apperr.New(http.StatusBadRequest, "Price must not be negative")
	}

	course := &models.Course{
		Title:       title,
		Description: description,
		Instructor:  instructor,
		Price:       price,
		Status:      models.CourseStatusPublished,
	}
	if _, err := s.store.InsertCourse(ctx, course); err != nil {
		s.logger.Error("Failed to insert course", zap.Error(err))
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to create course", err)
	}

	s.logger.Info("Course created", zap.String("course_id", course.ID.Hex()), zap.Int64("price", course.Price))
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "Invalid course id")
	}
	course, err := s.store.FindCourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "Course not found")
		}
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch course", err)
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.store.ListPublishedCourses(ctx)
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch courses", err)
	}
	return courses, nil
}

// ListEnrolled returns the course documents behind the caller's enrollments.
func (s *CourseService) ListEnrolled(ctx context.Context, userID string) ([]models.Course, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "Invalid user id")
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "User not found")
		}
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch user", err)
	}
	if len(user.EnrolledCourses) == 0 {
		return []models.Course{}, nil
	}
	courses, err := s.store.FindCoursesByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch courses", err)
	}
	return courses, nil
}
