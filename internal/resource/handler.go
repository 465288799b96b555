package resource

import (
	"encoding/json"
	"net/http"
	"strconv"

	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/errors"
	"study-resource-hub/internal/utils"

	"github.com/gin-gonic/gin"
)

// Accepted upload types and size cap, matching the upload middleware of
// the frontend contract.
const maxUploadBytes = 10 << 20

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateResourceForm is bound from a multipart form; the file part (for
// Image/Pdf) travels separately under the "file" field.
type CreateResourceForm struct {
	Type        string   `form:"type" binding:"required"`
	Title       string   `form:"title" binding:"required,max=100"`
	Description string   `form:"description" binding:"omitempty,max=500"`
	SectionID   *uint64  `form:"sectionId"`
	Visibility  string   `form:"visibility" binding:"omitempty,oneof=private public shared"`
	Tags        []string `form:"tags"`
	Links       string   `form:"links"` // JSON-encoded [{url, description}] for LinkSheet
	Content     string   `form:"content"`
	WordCount   *int     `form:"wordCount"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateResourceForm
	if err := c.ShouldBind(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	input := CreateInput{
		Variant:     form.Type,
		Title:       form.Title,
		Description: form.Description,
		SectionID:   form.SectionID,
		Visibility:  domain.Visibility(form.Visibility),
		Tags:        form.Tags,
		Content:     form.Content,
		WordCount:   form.WordCount,
	}

	if form.Links != "" {
		if err := json.Unmarshal([]byte(form.Links), &input.Links); err != nil {
			c.Error(errors.BadRequest("Links must be a JSON array of {url, description}", err))
			return
		}
	}

	fileHeader, err := c.FormFile("file")
	if err == nil {
		if fileHeader.Size > maxUploadBytes {
			c.Error(errors.BadRequest("File exceeds the 10MB limit", nil))
			return
		}
		contentType := fileHeader.Header.Get("Content-Type")
		if !allowedUploadTypes[contentType] {
			c.Error(errors.BadRequest("Only JPEG, PNG, and PDF files are allowed!", nil))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.Error(errors.Internal(err))
			return
		}
		defer file.Close()

		input.File = &FileInput{
			Reader:      file,
			Filename:    fileHeader.Filename,
			ContentType: contentType,
			Size:        fileHeader.Size,
		}
	}

	res, err := h.service.CreateResource(c.Request.Context(), userID.(uint64), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "resource": res})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid resource id", err))
		return
	}

	userID, _ := c.Get("user_id")

	res, err := h.service.GetResource(c.Request.Context(), id, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": res})
}

func (h *Handler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListResources(c.Request.Context(), userID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resources": result.Data, "meta": result.Meta})
}

// UpdateNoteRequest is the partial update payload; only Note resources
// accept it.
type UpdateNoteRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Content     *string `json:"content"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid resource id", err))
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	res, err := h.service.UpdateNote(c.Request.Context(), id, userID.(uint64), NoteUpdate{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": res})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid resource id", err))
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeleteResource(c.Request.Context(), id, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Resource deleted"})
}
