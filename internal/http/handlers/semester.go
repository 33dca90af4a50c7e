package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type SemesterHandler struct {
	semesterService services.SemesterService
}

func NewSemesterHandler(semesterService services.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterService: semesterService}
}

// POST /api/semesters
func (h *SemesterHandler) Create(c *gin.Context) {
	var req struct {
		Name      string    `json:"name" binding:"required,notblank"`
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date" binding:"required,gtfield=StartDate"`
	}
	if !bind(c, &req) {
		return
	}
	sem, err := h.semesterService.Create(dbcOf(c), services.SemesterInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"semester": sem})
}

// PUT /api/semesters/:id
func (h *SemesterHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name      *string    `json:"name" binding:"omitempty,notblank"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if !bind(c, &req) {
		return
	}
	sem, err := h.semesterService.Update(dbcOf(c), id, services.SemesterUpdate{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"semester": sem})
}

// DELETE /api/semesters/:id
func (h *SemesterHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.semesterService.Delete(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/semesters/:id
func (h *SemesterHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sem, err := h.semesterService.Get(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"semester": sem})
}

// GET /api/semesters
func (h *SemesterHandler) List(c *gin.Context) {
	sems, err := h.semesterService.List(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"semesters": sems})
}
