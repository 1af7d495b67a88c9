package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/service"
	"github.com/twoschool/twoschool-api/pkg/response"
)

// ClassHandler handles classroom endpoints.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// Create godoc
// @Summary Create a classroom
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Classroom"
// @Success 201 {object} response.Envelope
// @Router /createClass [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req models.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid class payload")
		return
	}

	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Class created successfully.", "class", class)
}

// AddUser godoc
// @Summary Add a teacher or student to a classroom roster
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.AddUserToClassRequest true "Membership"
// @Success 200 {object} response.Envelope
// @Router /addUserToClass [put]
func (h *ClassHandler) AddUser(c *gin.Context) {
	var req models.AddUserToClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	class, err := h.service.AddUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "User added to class successfully.", "class", class)
}

// List godoc
// @Summary List the classrooms visible to the caller
// @Tags Classes
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /getClasses/{userId} [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.ListForUser(c.Request.Context(), claimsFromContext(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Classes retrieved successfully.", "classes", classes)
}

// Get godoc
// @Summary Get a classroom with every reference resolved
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /getClass/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Class retrieved successfully.", "class", detail)
}

// Export godoc
// @Summary Export the classroom roster as CSV or PDF
// @Tags Classes
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exportClass/{id} [get]
func (h *ClassHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))

	result, err := h.service.ExportRegister(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
