package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/service"
	"github.com/twoschool/twoschool-api/pkg/response"
)

// GradeHandler handles grade endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Add godoc
// @Summary Record a mark for a student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.AddGradeRequest true "Grade"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /addGrade [post]
func (h *GradeHandler) Add(c *gin.Context) {
	var req models.AddGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid grade payload")
		return
	}

	grade, err := h.service.Add(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Grade recorded successfully.", "grade", grade)
}

// List godoc
// @Summary List a student's grades
// @Tags Grades
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /getGrades/{studentId} [get]
func (h *GradeHandler) List(c *gin.Context) {
	views, err := h.service.ListForStudent(c.Request.Context(), claimsFromContext(c), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Grades retrieved successfully.", "grades", views)
}
