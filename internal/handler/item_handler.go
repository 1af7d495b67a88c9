package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/service"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/response"
	"github.com/twoschool/twoschool-api/pkg/storage"
)

// ItemHandler handles homework and disciplinary file endpoints.
type ItemHandler struct {
	items   *service.ItemService
	store   *storage.AttachmentStore
	metrics *service.MetricsService
}

// NewItemHandler constructs an item handler.
func NewItemHandler(items *service.ItemService, store *storage.AttachmentStore, metrics *service.MetricsService) *ItemHandler {
	return &ItemHandler{items: items, store: store, metrics: metrics}
}

// AddHomework godoc
// @Summary Publish homework to a classroom, optionally with an attachment
// @Tags Items
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param classId query string true "Class ID"
// @Param content formData string false "Homework text"
// @Param subjectId formData string true "Subject ID"
// @Param teacherId formData string true "Teacher ID"
// @Param attachment formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /addHomeworkToClass [post]
func (h *ItemHandler) AddHomework(c *gin.Context) {
	var (
		req    models.CreateHomeworkRequest
		upload *storage.UploadHandle
	)
	queryClass := c.Query("classId")

	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		// the attachment is stored before validation runs; the service
		// rolls it back when the request turns out to be invalid
		req.Content = c.PostForm("content")
		req.ClassID = c.PostForm("classId")
		req.SubjectID = c.PostForm("subjectId")
		req.TeacherID = c.PostForm("teacherId")
		if queryClass != "" {
			req.ClassID = queryClass
		}
		if req.ClassID == "" {
			response.BadRequest(c, "ClassID must be provided.")
			return
		}

		var err error
		upload, err = h.store.Receive(c.Request, req.ClassID)
		if errors.Is(err, storage.ErrNoAttachment) {
			response.BadRequest(c, "There was an issue while uploading the requested files.")
			return
		}
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Homework file upload failed."))
			return
		}
		h.metrics.ObserveUpload()
	case strings.HasPrefix(contentType, "application/json"):
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid homework payload")
			return
		}
		if queryClass != "" {
			req.ClassID = queryClass
		}
	default:
		response.BadRequest(c, "Invalid content-type.")
		return
	}

	hw, err := h.items.CreateHomework(c.Request.Context(), claimsFromContext(c), req, upload)
	if err != nil {
		if upload != nil && appErrors.FromError(err).Status == http.StatusBadRequest {
			h.metrics.ObserveUploadRollback()
		}
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Homework created successfully.", "homework", hw)
}

// ListHomework godoc
// @Summary List a classroom's homework
// @Tags Items
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /getHomeworks/{classId} [get]
func (h *ItemHandler) ListHomework(c *gin.Context) {
	views, err := h.items.ListHomework(c.Request.Context(), claimsFromContext(c), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Homeworks retrieved successfully.", "homeworks", views)
}

// AddReport godoc
// @Summary File a disciplinary report against a classroom
// @Tags Items
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body models.CreateReportRequest true "Report"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /addReport/{classId} [post]
func (h *ItemHandler) AddReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid report payload")
		return
	}
	if id := c.Param("classId"); id != "" {
		req.ClassID = id
	}

	report, err := h.items.CreateReport(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Report created successfully.", "disciplinaryFile", report)
}

// ListReports godoc
// @Summary List a classroom's disciplinary files
// @Tags Items
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /getReports/{classId} [get]
func (h *ItemHandler) ListReports(c *gin.Context) {
	views, err := h.items.ListReports(c.Request.Context(), claimsFromContext(c), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Reports retrieved successfully.", "disciplinaryFiles", views)
}

// Modify godoc
// @Summary Update a homework or disciplinary file
// @Tags Items
// @Accept json
// @Produce json
// @Param itemId query string true "Item ID"
// @Param classId query string false "Class ID, required for homework"
// @Param itemType query string true "homework or disciplinaryFile"
// @Param payload body models.ModifyItemRequest false "Changes"
// @Param attachment formData file false "Replacement attachment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /modifyItem [patch]
func (h *ItemHandler) Modify(c *gin.Context) {
	var (
		req    models.ModifyItemRequest
		upload *storage.UploadHandle
	)

	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		req.ItemType = models.ItemType(c.PostForm("itemType"))
		req.ItemID = c.PostForm("itemId")
		req.ClassID = c.PostForm("classId")
		if v, ok := c.GetPostForm("content"); ok {
			req.Content = &v
		}
		if v, ok := c.GetPostForm("subjectId"); ok {
			req.SubjectID = &v
		}
		applyItemQuery(c, &req.ItemType, &req.ItemID, &req.ClassID)
		if req.ClassID == "" {
			response.BadRequest(c, "ClassID must be provided.")
			return
		}

		var err error
		upload, err = h.store.Receive(c.Request, req.ClassID)
		if errors.Is(err, storage.ErrNoAttachment) {
			response.BadRequest(c, "Content Type is form-data but no file attachment has been provided.")
			return
		}
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Homework file upload failed."))
			return
		}
		h.metrics.ObserveUpload()
	default:
		if c.Request.Body != nil && c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BadRequest(c, "invalid modify payload")
				return
			}
		}
		applyItemQuery(c, &req.ItemType, &req.ItemID, &req.ClassID)
	}

	item, err := h.items.Modify(c.Request.Context(), claimsFromContext(c), req, upload)
	if err != nil {
		if upload != nil && appErrors.FromError(err).Status == http.StatusBadRequest {
			h.metrics.ObserveUploadRollback()
		}
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Resource was updated successfully.", "item", item)
}

// Delete godoc
// @Summary Delete a homework or disciplinary file
// @Tags Items
// @Accept json
// @Produce json
// @Param itemId query string true "Item ID"
// @Param itemType query string true "homework or disciplinaryFile"
// @Param payload body models.DeleteItemRequest false "Target"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /deleteItem [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	var req models.DeleteItemRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid delete payload")
			return
		}
	}
	applyItemQuery(c, &req.ItemType, &req.ItemID, nil)

	if err := h.items.Delete(c.Request.Context(), claimsFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Resource was deleted successfully.", "", nil)
}

// applyItemQuery lets the generic item routes address their target through
// query parameters, overriding whatever the body carries. classID is nil
// for routes that do not take one.
func applyItemQuery(c *gin.Context, itemType *models.ItemType, itemID, classID *string) {
	if v := c.Query("itemType"); v != "" {
		*itemType = models.ItemType(v)
	}
	if v := c.Query("itemId"); v != "" {
		*itemID = v
	}
	if classID == nil {
		return
	}
	if v := c.Query("classId"); v != "" {
		*classID = v
	}
}
