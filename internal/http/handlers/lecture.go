package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type LectureHandler struct {
	lectureService services.LectureService
}

func NewLectureHandler(lectureService services.LectureService) *LectureHandler {
	return &LectureHandler{lectureService: lectureService}
}

// POST /api/courses/:courseId/lectures (JSON or multipart/form-data with optional "video")
func (h *LectureHandler) Create(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var req struct {
		Title          string     `json:"title" form:"title" binding:"required,notblank"`
		Content        string     `json:"content" form:"content"`
		IsReviewed     bool       `json:"is_reviewed" form:"is_reviewed"`
		ReviewDeadline *time.Time `json:"review_deadline" form:"review_deadline" time_format:"2006-01-02T15:04:05Z07:00"`
	}
	if !bind(c, &req) {
		return
	}
	lec, err := h.lectureService.Create(dbcOf(c), courseID, services.LectureInput{
		Title:          req.Title,
		Content:        req.Content,
		IsReviewed:     req.IsReviewed,
		ReviewDeadline: req.ReviewDeadline,
		Video:          formFile(c, "video"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lecture": lec})
}

// GET /api/courses/:courseId/lectures
func (h *LectureHandler) List(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	lectures, err := h.lectureService.List(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lectures": lectures})
}

// GET /api/courses/:courseId/lectures/:lectureId
func (h *LectureHandler) Get(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	lec, err := h.lectureService.Get(dbcOf(c), courseID, lectureID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": lec})
}

// PUT /api/courses/:courseId/lectures/:lectureId
func (h *LectureHandler) Update(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	var req struct {
		Title          *string    `json:"title" form:"title" binding:"omitempty,notblank"`
		Content        *string    `json:"content" form:"content"`
		IsReviewed     *bool      `json:"is_reviewed" form:"is_reviewed"`
		ReviewDeadline *time.Time `json:"review_deadline" form:"review_deadline" time_format:"2006-01-02T15:04:05Z07:00"`
	}
	if !bind(c, &req) {
		return
	}
	lec, err := h.lectureService.Update(dbcOf(c), courseID, lectureID, services.LectureUpdate{
		Title:          req.Title,
		Content:        req.Content,
		IsReviewed:     req.IsReviewed,
		ReviewDeadline: req.ReviewDeadline,
		Video:          formFile(c, "video"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": lec})
}

// PUT /api/courses/:courseId/lectures/:lectureId/review
func (h *LectureHandler) MarkReviewed(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	lec, err := h.lectureService.MarkReviewed(dbcOf(c), courseID, lectureID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": lec})
}

// PUT /api/courses/:courseId/lectures/review-all
func (h *LectureHandler) ReviewAllOverdue(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	n, err := h.lectureService.ReviewAllOverdue(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviewed": n})
}

// DELETE /api/courses/:courseId/lectures/:lectureId
func (h *LectureHandler) Delete(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	if err := h.lectureService.Delete(dbcOf(c), courseID, lectureID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
