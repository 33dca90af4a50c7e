package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type CourseHandler struct {
	courseService     services.CourseService
	enrollmentService services.EnrollmentService
}

func NewCourseHandler(courseService services.CourseService, enrollmentService services.EnrollmentService) *CourseHandler {
	return &CourseHandler{courseService: courseService, enrollmentService: enrollmentService}
}

// POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req struct {
		Title       string                   `json:"title" binding:"required,notblank"`
		AboutCourse string                   `json:"about_course"`
		SemesterID  string                   `json:"semester_id" binding:"required,uuid"`
		Attendance  services.AttendanceMarks `json:"attendance"`
		services.CourseOutline
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	detail, err := h.courseService.Create(dbcOf(c), services.CourseInput{
		Title:       req.Title,
		AboutCourse: req.AboutCourse,
		SemesterID:  uuid.MustParse(req.SemesterID),
		Outline:     req.CourseOutline,
		Attendance:  req.Attendance,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": detail})
}

// PUT /api/courses/:courseId
func (h *CourseHandler) Update(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title" binding:"omitempty,notblank"`
		AboutCourse *string `json:"about_course"`
		SemesterID  *string `json:"semester_id" binding:"omitempty,uuid"`
		services.CourseOutline
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	in := services.CourseUpdate{Title: req.Title, AboutCourse: req.AboutCourse, Outline: req.CourseOutline}
	if req.SemesterID != nil {
		id := uuid.MustParse(*req.SemesterID)
		in.SemesterID = &id
	}
	detail, err := h.courseService.Update(dbcOf(c), courseID, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": detail})
}

// DELETE /api/courses/:courseId
func (h *CourseHandler) Delete(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	if err := h.courseService.Delete(dbcOf(c), courseID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/courses
func (h *CourseHandler) ListMine(c *gin.Context) {
	courses, err := h.courseService.ListMine(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:courseId
func (h *CourseHandler) Get(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	detail, err := h.courseService.Get(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": detail})
}

// PUT /api/courses/:courseId/attendance
// body: { "attendance": { "<session>": { "<studentId>": "present" } } }
func (h *CourseHandler) UpdateAttendance(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	var req struct {
		Attendance services.AttendanceMarks `json:"attendance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	out, err := h.courseService.UpdateAttendance(dbcOf(c), courseID, req.Attendance)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attendance": out})
}

// studentIDBody reads the optional { "student_id": "..." } body of enroll/unenroll.
func studentIDBody(c *gin.Context) (*uuid.UUID, bool) {
	if c.Request.ContentLength == 0 {
		return nil, true
	}
	var req struct {
		StudentID string `json:"student_id" binding:"omitempty,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return nil, false
	}
	if req.StudentID == "" {
		return nil, true
	}
	id := uuid.MustParse(req.StudentID)
	return &id, true
}

// POST /api/courses/:courseId/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	studentID, ok := studentIDBody(c)
	if !ok {
		return
	}
	view, err := h.enrollmentService.Enroll(dbcOf(c), courseID, studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": view})
}

// DELETE /api/courses/:courseId/enroll
func (h *CourseHandler) Unenroll(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	studentID, ok := studentIDBody(c)
	if !ok {
		return
	}
	if err := h.enrollmentService.Unenroll(dbcOf(c), courseID, studentID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/courses/:courseId/students
func (h *CourseHandler) Roster(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseId")
	if !ok {
		return
	}
	roster, err := h.enrollmentService.ListRoster(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if roster == nil {
		roster = []*services.RosterEntry{}
	}
	response.RespondOK(c, gin.H{"students": roster, "total": len(roster)})
}
