package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/service"
	"github.com/twoschool/twoschool-api/pkg/response"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// Signup godoc
// @Summary Create a new account with a mailed temporary password
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "New account"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid signup payload")
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "User created successfully.", "user", user)
}

// Get godoc
// @Summary Get a user profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /getUser/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "User retrieved successfully.", "user", user.Info())
}

// Modify godoc
// @Summary Update a user profile
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.ModifyUserRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /modifyUser/{id} [patch]
func (h *UserHandler) Modify(c *gin.Context) {
	var req models.ModifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid modify payload")
		return
	}

	claims := claimsFromContext(c)
	targetID := c.Param("id")

	user, err := h.users.Modify(c.Request.Context(), claims, targetID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// tokens embed profile fields, so a self-edit needs a fresh token
	if claims != nil && claims.UserID == targetID {
		token, err := h.auth.IssueToken(user)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithToken(c, http.StatusOK, "Updated successfully.", token, "user", user)
		return
	}
	response.OK(c, http.StatusOK, "Updated successfully.", "user", user)
}

// Delete godoc
// @Summary Delete an account and everything referencing it
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /deleteUser/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Deleted successfully.", "", nil)
}

// ListAll godoc
// @Summary List every account grouped by role
// @Tags Users
// @Produce json
// @Param category query string false "teachers, students or admins"
// @Success 200 {object} response.Envelope
// @Router /getAllUsers [get]
func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.users.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		group, ok := users[category]
		if !ok {
			response.BadRequest(c, "Unknown user category.")
			return
		}
		users = map[string][]models.User{category: group}
	}
	response.OK(c, http.StatusOK, "Users retrieved successfully.", "users", users)
}
