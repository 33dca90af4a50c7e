package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// POST /api/events (JSON or multipart/form-data with optional "image")
func (h *EventHandler) Create(c *gin.Context) {
	var req struct {
		Name        string    `json:"name" form:"name" binding:"required,notblank"`
		Description string    `json:"description" form:"description"`
		Date        time.Time `json:"date" form:"date" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
		Time        string    `json:"time" form:"time"`
		Location    string    `json:"location" form:"location"`
		Link        string    `json:"link" form:"link" binding:"required,url"`
	}
	if !bind(c, &req) {
		return
	}
	ev, err := h.eventService.Create(dbcOf(c), services.EventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Link:        req.Link,
		Image:       formFile(c, "image"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"event": ev})
}

// PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string    `json:"name" form:"name" binding:"omitempty,notblank"`
		Description *string    `json:"description" form:"description"`
		Date        *time.Time `json:"date" form:"date" time_format:"2006-01-02T15:04:05Z07:00"`
		Time        *string    `json:"time" form:"time"`
		Location    *string    `json:"location" form:"location"`
		Link        *string    `json:"link" form:"link" binding:"omitempty,url"`
		RemoveImage bool       `json:"remove_image" form:"remove_image"`
	}
	if !bind(c, &req) {
		return
	}
	ev, err := h.eventService.Update(dbcOf(c), id, services.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Link:        req.Link,
		Image:       formFile(c, "image"),
		RemoveImage: req.RemoveImage,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"event": ev})
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.eventService.Delete(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ev, err := h.eventService.Get(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"event": ev})
}

// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.List(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}
