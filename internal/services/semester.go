package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type SemesterInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// SemesterUpdate changes only the non-nil fields.
type SemesterUpdate struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

type SemesterService interface {
	Create(dbc dbctx.Context, in SemesterInput) (*types.Semester, error)
	Update(dbc dbctx.Context, semesterID uuid.UUID, in SemesterUpdate) (*types.Semester, error)
	Delete(dbc dbctx.Context, semesterID uuid.UUID) error
	Get(dbc dbctx.Context, semesterID uuid.UUID) (*types.Semester, error)
	List(dbc dbctx.Context) ([]*types.Semester, error)
}

type semesterService struct {
	db           *gorm.DB
	log          *logger.Logger
	semesterRepo repos.SemesterRepo
}

func NewSemesterService(db *gorm.DB, log *logger.Logger, semesterRepo repos.SemesterRepo) SemesterService {
	return &semesterService{
		db:           db,
		log:          log.With("service", "SemesterService"),
		semesterRepo: semesterRepo,
	}
}

func validateSemester(name string, start, end time.Time) error {
	if strings.TrimSpace(name) == "" {
		return apierr.BadRequest("name_required", "name is required")
	}
	if start.IsZero() || end.IsZero() {
		return apierr.BadRequest("dates_required", "start_date and end_date are required")
	}
	if !end.After(start) {
		return apierr.BadRequest("invalid_date_range", "end_date must be after start_date")
	}
	return nil
}

func (ss *semesterService) Create(dbc dbctx.Context, in SemesterInput) (*types.Semester, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateSemester(in.Name, in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	created, err := ss.semesterRepo.Create(dbc, &types.Semester{
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
	})
	if err != nil {
		return nil, apierr.FromDB(err, "semester")
	}
	logger.FromContext(dbc.Ctx, ss.log).Info("Semester created", "semester_id", created.ID)
	return created, nil
}

func (ss *semesterService) Update(dbc dbctx.Context, semesterID uuid.UUID, in SemesterUpdate) (*types.Semester, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	var out *types.Semester
	if err := ss.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		sem, err := ss.semesterRepo.GetByID(inner, semesterID)
		if err != nil {
			return apierr.FromDB(err, "semester")
		}
		if in.Name != nil {
			sem.Name = strings.TrimSpace(*in.Name)
		}
		if in.StartDate != nil {
			sem.StartDate = in.StartDate.UTC()
		}
		if in.EndDate != nil {
			sem.EndDate = in.EndDate.UTC()
		}
		if err := validateSemester(sem.Name, sem.StartDate, sem.EndDate); err != nil {
			return err
		}
		if err := ss.semesterRepo.Save(inner, sem); err != nil {
			return apierr.FromDB(err, "semester")
		}
		out = sem
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *semesterService) Delete(dbc dbctx.Context, semesterID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return err
	}
	n, err := ss.semesterRepo.DeleteByID(dbc, semesterID)
	if err != nil {
		return apierr.FromDB(err, "semester")
	}
	if n == 0 {
		return apierr.NotFound("semester_not_found", "semester not found")
	}
	return nil
}

func (ss *semesterService) Get(dbc dbctx.Context, semesterID uuid.UUID) (*types.Semester, error) {
	sem, err := ss.semesterRepo.GetByID(dbc, semesterID)
	if err != nil {
		return nil, apierr.FromDB(err, "semester")
	}
	return sem, nil
}

func (ss *semesterService) List(dbc dbctx.Context) ([]*types.Semester, error) {
	out, err := ss.semesterRepo.List(dbc)
	if err != nil {
		return nil, apierr.FromDB(err, "semester")
	}
	return out, nil
}
