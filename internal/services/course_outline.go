package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

type CreditPointsInput struct {
	Lecture  float64 `json:"lecture"`
	Lab      float64 `json:"lab"`
	Tutorial float64 `json:"tutorial"`
	Total    float64 `json:"total"`
}

type WeeklyPlanInput struct {
	Week    int    `json:"week"`
	Topic   string `json:"topic"`
	Details string `json:"details"`
}

type ScheduleInput struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Room      string `json:"room"`
}

// CourseOutline carries the outline sections of a course. A nil section is left untouched
// on update; an empty, non-nil one clears it.
type CourseOutline struct {
	CreditPoints *CreditPointsInput   `json:"credit_points,omitempty"`
	Outcomes     []string             `json:"outcomes,omitempty"`
	WeeklyPlan   []WeeklyPlanInput    `json:"weekly_plan,omitempty"`
	Syllabus     []types.SyllabusUnit `json:"syllabus,omitempty"`
	Schedule     []ScheduleInput      `json:"schedule,omitempty"`
}

var weekdays = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

func (o CourseOutline) validate() error {
	if cp := o.CreditPoints; cp != nil {
		if cp.Lecture < 0 || cp.Lab < 0 || cp.Tutorial < 0 || cp.Total < 0 {
			return apierr.BadRequest("invalid_credit_points", "credit points cannot be negative")
		}
	}
	seen := map[int]bool{}
	for _, w := range o.WeeklyPlan {
		if w.Week <= 0 {
			return apierr.BadRequest("invalid_week", "week numbers start at 1")
		}
		if seen[w.Week] {
			return apierr.BadRequest("duplicate_week", "week "+strconv.Itoa(w.Week)+" is planned twice")
		}
		seen[w.Week] = true
		if strings.TrimSpace(w.Topic) == "" {
			return apierr.BadRequest("topic_required", "week "+strconv.Itoa(w.Week)+" needs a topic")
		}
	}
	for _, u := range o.Syllabus {
		if strings.TrimSpace(u.Title) == "" {
			return apierr.BadRequest("unit_title_required", "syllabus units need a title")
		}
	}
	for _, s := range o.Schedule {
		if _, ok := weekdays[strings.ToLower(strings.TrimSpace(s.Day))]; !ok {
			return apierr.BadRequest("invalid_schedule_day", "unknown day "+strconv.Quote(s.Day))
		}
		start, err := time.Parse("15:04", strings.TrimSpace(s.StartTime))
		if err != nil {
			return apierr.BadRequest("invalid_schedule_time", "start_time must be HH:MM")
		}
		end, err := time.Parse("15:04", strings.TrimSpace(s.EndTime))
		if err != nil {
			return apierr.BadRequest("invalid_schedule_time", "end_time must be HH:MM")
		}
		if !end.After(start) {
			return apierr.BadRequest("invalid_schedule_time", "end_time must be after start_time")
		}
	}
	return nil
}

// write replaces every provided section of the course outline.
func (o CourseOutline) write(dbc dbctx.Context, repo repos.CourseOutlineRepo, courseID uuid.UUID) error {
	if cp := o.CreditPoints; cp != nil {
		total := cp.Total
		if total == 0 {
			total = cp.Lecture + cp.Lab + cp.Tutorial
		}
		row := &types.CourseCreditPoints{Lecture: cp.Lecture, Lab: cp.Lab, Tutorial: cp.Tutorial, Total: total}
		if err := repo.ReplaceCreditPoints(dbc, courseID, row); err != nil {
			return apierr.FromDB(err, "credit_points")
		}
	}
	if o.Outcomes != nil {
		rows := make([]*types.CourseOutcome, 0, len(o.Outcomes))
		for _, d := range o.Outcomes {
			if d = strings.TrimSpace(d); d != "" {
				rows = append(rows, &types.CourseOutcome{Description: d})
			}
		}
		if err := repo.ReplaceOutcomes(dbc, courseID, rows); err != nil {
			return apierr.FromDB(err, "outcome")
		}
	}
	if o.WeeklyPlan != nil {
		rows := make([]*types.CourseWeeklyPlan, 0, len(o.WeeklyPlan))
		for _, w := range o.WeeklyPlan {
			rows = append(rows, &types.CourseWeeklyPlan{
				Week:    w.Week,
				Topic:   strings.TrimSpace(w.Topic),
				Details: w.Details,
			})
		}
		if err := repo.ReplaceWeeklyPlans(dbc, courseID, rows); err != nil {
			return apierr.FromDB(err, "weekly_plan")
		}
	}
	if o.Syllabus != nil {
		if err := repo.ReplaceSyllabus(dbc, courseID, &types.CourseSyllabus{Units: o.Syllabus}); err != nil {
			return apierr.FromDB(err, "syllabus")
		}
	}
	if o.Schedule != nil {
		rows := make([]*types.CourseSchedule, 0, len(o.Schedule))
		for _, s := range o.Schedule {
			rows = append(rows, &types.CourseSchedule{
				Day:       weekdays[strings.ToLower(strings.TrimSpace(s.Day))],
				StartTime: strings.TrimSpace(s.StartTime),
				EndTime:   strings.TrimSpace(s.EndTime),
				Room:      strings.TrimSpace(s.Room),
			})
		}
		if err := repo.ReplaceSchedules(dbc, courseID, rows); err != nil {
			return apierr.FromDB(err, "schedule")
		}
	}
	return nil
}

// AttendanceMarks maps a session key (usually a date) to student id -> status.
type AttendanceMarks map[string]map[string]string

var attendanceStatuses = map[string]bool{"present": true, "absent": true, "late": true, "excused": true}

// mergeAttendance folds marks into sessions, overwriting per-student statuses.
func mergeAttendance(sessions map[string]any, marks AttendanceMarks) map[string]any {
	if sessions == nil {
		sessions = map[string]any{}
	}
	for session, byStudent := range marks {
		cur, _ := sessions[session].(map[string]any)
		if cur == nil {
			cur = map[string]any{}
		}
		for studentID, status := range byStudent {
			cur[studentID] = status
		}
		sessions[session] = cur
	}
	return sessions
}

// attendanceFor keeps only one student's entries in every session.
func attendanceFor(sessions map[string]any, studentID uuid.UUID) map[string]any {
	out := map[string]any{}
	key := studentID.String()
	for session, v := range sessions {
		byStudent, _ := v.(map[string]any)
		if status, ok := byStudent[key]; ok {
			out[session] = map[string]any{key: status}
		}
	}
	return out
}
