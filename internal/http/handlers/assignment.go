package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// POST /api/courses/:courseId/assignments (JSON or multipart/form-data with "attachments")
func (h *AssignmentHandler) Create(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var req struct {
		Title       string    `json:"title" form:"title" binding:"required,notblank"`
		Description string    `json:"description" form:"description"`
		DueDate     time.Time `json:"due_date" form:"due_date" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
		TotalPoints float64   `json:"total_points" form:"total_points" binding:"required,gt=0"`
		IsActive    *bool     `json:"is_active" form:"is_active"`
	}
	if !bind(c, &req) {
		return
	}
	a, err := h.assignmentService.Create(dbcOf(c), courseID, services.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		TotalPoints: req.TotalPoints,
		IsActive:    req.IsActive,
		Attachments: formFiles(c, "attachments"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"assignment": a})
}

// GET /api/courses/:courseId/assignments
func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	list, err := h.assignmentService.ListByCourse(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": list})
}

// GET /api/assignments/:assignmentId
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	a, err := h.assignmentService.Get(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignment": a})
}

// PUT /api/assignments/:assignmentId
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	var req struct {
		Title               *string    `json:"title" form:"title" binding:"omitempty,notblank"`
		Description         *string    `json:"description" form:"description"`
		DueDate             *time.Time `json:"due_date" form:"due_date" time_format:"2006-01-02T15:04:05Z07:00"`
		TotalPoints         *float64   `json:"total_points" form:"total_points" binding:"omitempty,gt=0"`
		IsActive            *bool      `json:"is_active" form:"is_active"`
		ReplaceAttachments  bool       `json:"replace_attachments" form:"replace_attachments"`
		RemoveAttachmentIDs []string   `json:"remove_attachment_ids" form:"remove_attachment_ids" binding:"omitempty,dive,uuid"`
	}
	if !bind(c, &req) {
		return
	}
	remove := make([]uuid.UUID, 0, len(req.RemoveAttachmentIDs))
	for _, raw := range req.RemoveAttachmentIDs {
		remove = append(remove, uuid.MustParse(raw))
	}
	a, err := h.assignmentService.Update(dbcOf(c), id, services.AssignmentUpdate{
		Title:               req.Title,
		Description:         req.Description,
		DueDate:             req.DueDate,
		TotalPoints:         req.TotalPoints,
		IsActive:            req.IsActive,
		Attachments:         formFiles(c, "attachments"),
		ReplaceAttachments:  req.ReplaceAttachments,
		RemoveAttachmentIDs: remove,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignment": a})
}

// DELETE /api/assignments/:assignmentId
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	if err := h.assignmentService.Delete(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/assignments/:assignmentId/attachments/:attachmentId
func (h *AssignmentHandler) DeleteAttachment(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	attachmentID, ok := uuidParam(c, "attachmentId")
	if !ok {
		return
	}
	if err := h.assignmentService.DeleteAttachment(dbcOf(c), id, attachmentID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/assignments/:assignmentId/submit (multipart/form-data)
// field: "file"
func (h *AssignmentHandler) Submit(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	file := formFile(c, "file")
	if file == nil {
		response.RespondAPIError(c, apierr.BadRequest("file_required", "multipart field \"file\" is required"))
		return
	}
	sub, err := h.assignmentService.Submit(dbcOf(c), id, *file)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": sub})
}

// GET /api/assignments/:assignmentId/submissions
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	subs, err := h.assignmentService.ListSubmissions(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": subs})
}

// GET /api/assignments/:assignmentId/submissions/me
func (h *AssignmentHandler) MySubmission(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	sub, err := h.assignmentService.MySubmission(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": sub})
}

// POST /api/assignments/:assignmentId/submissions/:submissionId/grade
// body: { "grade": 8.5, "feedback": "..." }
func (h *AssignmentHandler) Grade(c *gin.Context) {
	id, ok := uuidParam(c, "assignmentId")
	if !ok {
		return
	}
	submissionID, ok := uuidParam(c, "submissionId")
	if !ok {
		return
	}
	var req struct {
		Grade    *float64 `json:"grade" binding:"required"`
		Feedback string   `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	sub, err := h.assignmentService.Grade(dbcOf(c), id, submissionID, *req.Grade, req.Feedback)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": sub})
}
