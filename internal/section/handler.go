package section

import (
	"net/http"
	"strconv"

	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateSectionRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public shared"`
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	section, err := h.service.CreateSection(
		c.Request.Context(),
		userID.(uint64),
		req.Title,
		req.Description,
		domain.Visibility(req.Visibility),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "section": section})
}

func (h *Handler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	sections, err := h.service.GetUserSections(c.Request.Context(), userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sections": sections})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid section id", err))
		return
	}

	userID, _ := c.Get("user_id")

	section, err := h.service.GetSectionByID(c.Request.Context(), id, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "section": section})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid section id", err))
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeleteSection(c.Request.Context(), id, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Section deleted"})
}
