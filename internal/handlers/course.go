package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/models"
)

// CourseProvider is what the course endpoints need from the service layer.
type CourseProvider interface {
	CreateCourse(ctx context.Context, instructorID, title, description string, price int64) (*models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListEnrolled(ctx context.Context, userID string) ([]models.Course, error)
}

type CourseHandler struct {
	service  CourseProvider
	validate *validator.Validate
}

func NewCourseHandler(service CourseProvider) *CourseHandler {
	return &CourseHandler{service: service, validate: validator.New()}
}

type createCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"required,min=10"`
	Price       int64  `json:"price" validate:"gte=0"`
}

// CreateCourse handles POST /api/course (instructor only)
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		apperr.HandleError(w, apperr.New(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.HandleError(w, apperr.Wrap(http.StatusBadRequest, "Validation failed: "+err.Error(), err))
		return
	}

	course, err := h.service.CreateCourse(r.Context(), userID, req.Title, req.Description, req.Price)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

// GetCourse handles GET /api/course/{courseID}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.GetCourse(r.Context(), mux.Vars(r)["courseID"])
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"courses": courses,
	})
}

// ListEnrollments handles GET /api/enrollments
func (h *CourseHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		apperr.HandleError(w, apperr.New(http.StatusUnauthorized, "Authentication required"))
		return
	}
	courses, err := h.service.ListEnrolled(r.Context(), userID)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"courses": courses,
	})
}
