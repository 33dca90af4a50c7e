package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type UserHandler struct {
	userService       services.UserService
	enrollmentService services.EnrollmentService
}

func NewUserHandler(userService services.UserService, enrollmentService services.EnrollmentService) *UserHandler {
	return &UserHandler{userService: userService, enrollmentService: enrollmentService}
}

func roleOf(s string) types.Role {
	return types.Role(strings.ToLower(strings.TrimSpace(s)))
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// POST /api/users
func (uh *UserHandler) CreateUser(c *gin.Context) {
	var req accountRequest
	if !bind(c, &req) {
		return
	}
	profile, err := uh.userService.CreateUser(dbcOf(c), req.input())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": profile})
}

// POST /api/users/import (multipart/form-data)
// field: "file" (.xlsx)
func (uh *UserHandler) ImportStudents(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("file_required", "multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("file_unreadable", err.Error()))
		return
	}
	defer f.Close()

	res, err := uh.userService.ImportStudents(dbcOf(c), f)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/teachers
func (uh *UserHandler) ListTeachers(c *gin.Context) {
	teachers, err := uh.userService.ListTeachers(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"teachers": teachers})
}

// GET /api/teachers/me/students
func (uh *UserHandler) ListMyStudents(c *gin.Context) {
	students, err := uh.userService.ListMyStudents(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"students": students})
}

// GET /api/students/unassigned
func (uh *UserHandler) ListUnassignedStudents(c *gin.Context) {
	students, err := uh.userService.ListUnassignedStudents(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"students": students})
}

// PUT /api/students/:studentId/teacher
// body: { "teacher_id": "..." } (omit to assign the calling teacher)
func (uh *UserHandler) AssignTeacher(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId")
	if !ok {
		return
	}
	var req struct {
		TeacherID *string `json:"teacher_id" binding:"omitempty,uuid"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	var teacherID *uuid.UUID
	if req.TeacherID != nil {
		id := uuid.MustParse(*req.TeacherID)
		teacherID = &id
	}
	st, err := uh.enrollmentService.AssignStudentToTeacher(dbcOf(c), studentID, teacherID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": st})
}
