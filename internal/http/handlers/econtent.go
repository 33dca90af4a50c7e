package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type EContentHandler struct {
	econtentService services.EContentService
}

func NewEContentHandler(econtentService services.EContentService) *EContentHandler {
	return &EContentHandler{econtentService: econtentService}
}

// POST /api/courses/:courseId/econtent/modules (multipart/form-data)
// fields: "module_number", "title", "files"
func (h *EContentHandler) AddModule(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var req struct {
		ModuleNumber int    `json:"module_number" form:"module_number" binding:"required,gt=0"`
		Title        string `json:"title" form:"title" binding:"required,notblank"`
	}
	if !bind(c, &req) {
		return
	}
	m, err := h.econtentService.AddModule(dbcOf(c), courseID, services.ModuleInput{
		ModuleNumber: req.ModuleNumber,
		Title:        req.Title,
		Files:        formFiles(c, "files"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": m})
}

// GET /api/courses/:courseId/econtent
func (h *EContentHandler) Get(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	ec, err := h.econtentService.Get(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"econtent": ec})
}

// DELETE /api/courses/:courseId/econtent/modules/:moduleId
func (h *EContentHandler) DeleteModule(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	moduleID, ok := uuidParam(c, "moduleId")
	if !ok {
		return
	}
	if err := h.econtentService.DeleteModule(dbcOf(c), courseID, moduleID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/courses/:courseId/econtent/modules/:moduleId/files/:fileId
func (h *EContentHandler) DeleteFile(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	moduleID, ok := uuidParam(c, "moduleId")
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "fileId")
	if !ok {
		return
	}
	if err := h.econtentService.DeleteFile(dbcOf(c), courseID, moduleID, fileID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
