package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// CourseOutlineRepo owns the per-course outline sections. Replace* methods swap a section wholesale.
type CourseOutlineRepo interface {
	GetCreditPoints(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseCreditPoints, error)
	ReplaceCreditPoints(dbc dbctx.Context, courseID uuid.UUID, cp *types.CourseCreditPoints) error

	ListOutcomes(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseOutcome, error)
	ReplaceOutcomes(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseOutcome) error

	ListWeeklyPlans(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseWeeklyPlan, error)
	ReplaceWeeklyPlans(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseWeeklyPlan) error

	GetSyllabus(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseSyllabus, error)
	ReplaceSyllabus(dbc dbctx.Context, courseID uuid.UUID, syllabus *types.CourseSyllabus) error

	ListSchedules(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseSchedule, error)
	ReplaceSchedules(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseSchedule) error

	GetAttendance(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseAttendance, error)
	LockAttendance(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseAttendance, error)
	SaveAttendance(dbc dbctx.Context, attendance *types.CourseAttendance) error
}

type courseOutlineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseOutlineRepo(db *gorm.DB, baseLog *logger.Logger) CourseOutlineRepo {
	repoLog := baseLog.With("repo", "CourseOutlineRepo")
	return &courseOutlineRepo{db: db, log: repoLog}
}

// first returns (nil, nil) when the section was never written.
func first[T any](q *gorm.DB, courseID uuid.UUID) (*T, error) {
	var rows []*T
	if err := q.Where("course_id = ?", courseID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *courseOutlineRepo) GetCreditPoints(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseCreditPoints, error) {
	return first[types.CourseCreditPoints](dbc.DB(r.db), courseID)
}

func (r *courseOutlineRepo) ReplaceCreditPoints(dbc dbctx.Context, courseID uuid.UUID, cp *types.CourseCreditPoints) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", courseID).Delete(&types.CourseCreditPoints{}).Error; err != nil {
		return err
	}
	if cp == nil {
		return nil
	}
	cp.ID = uuid.Nil
	cp.CourseID = courseID
	return tx.Create(cp).Error
}

func (r *courseOutlineRepo) ListOutcomes(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseOutcome, error) {
	var results []*types.CourseOutcome
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseOutlineRepo) ReplaceOutcomes(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseOutcome) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", courseID).Delete(&types.CourseOutcome{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i, row := range rows {
		row.ID = uuid.Nil
		row.CourseID = courseID
		row.Position = i + 1
	}
	return tx.Create(&rows).Error
}

func (r *courseOutlineRepo) ListWeeklyPlans(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseWeeklyPlan, error) {
	var results []*types.CourseWeeklyPlan
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("week ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseOutlineRepo) ReplaceWeeklyPlans(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseWeeklyPlan) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", courseID).Delete(&types.CourseWeeklyPlan{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.ID = uuid.Nil
		row.CourseID = courseID
	}
	return tx.Create(&rows).Error
}

func (r *courseOutlineRepo) GetSyllabus(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseSyllabus, error) {
	return first[types.CourseSyllabus](dbc.DB(r.db), courseID)
}

func (r *courseOutlineRepo) ReplaceSyllabus(dbc dbctx.Context, courseID uuid.UUID, syllabus *types.CourseSyllabus) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", courseID).Delete(&types.CourseSyllabus{}).Error; err != nil {
		return err
	}
	if syllabus == nil {
		return nil
	}
	syllabus.ID = uuid.Nil
	syllabus.CourseID = courseID
	return tx.Create(syllabus).Error
}

func (r *courseOutlineRepo) ListSchedules(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseSchedule, error) {
	var results []*types.CourseSchedule
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("created_at ASC, start_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseOutlineRepo) ReplaceSchedules(dbc dbctx.Context, courseID uuid.UUID, rows []*types.CourseSchedule) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", courseID).Delete(&types.CourseSchedule{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.ID = uuid.Nil
		row.CourseID = courseID
	}
	return tx.Create(&rows).Error
}

func (r *courseOutlineRepo) GetAttendance(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseAttendance, error) {
	return first[types.CourseAttendance](dbc.DB(r.db), courseID)
}

// LockAttendance loads the attendance row for update, creating an empty one on first use.
func (r *courseOutlineRepo) LockAttendance(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseAttendance, error) {
	tx := dbc.DB(r.db)
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var att types.CourseAttendance
	if err := tx.
		Where(types.CourseAttendance{CourseID: courseID}).
		Attrs(types.CourseAttendance{Sessions: map[string]any{}}).
		FirstOrCreate(&att).Error; err != nil {
		return nil, err
	}
	if att.Sessions == nil {
		att.Sessions = map[string]any{}
	}
	return &att, nil
}

func (r *courseOutlineRepo) SaveAttendance(dbc dbctx.Context, attendance *types.CourseAttendance) error {
	return dbc.DB(r.db).
		Model(&types.CourseAttendance{}).
		Where("id = ?", attendance.ID).
		Update("sessions", attendance.Sessions).Error
}
