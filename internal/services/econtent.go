package services

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/filetype"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ModuleInput struct {
	ModuleNumber int
	Title        string
	Files        []FileUpload
}

type EContentService interface {
	AddModule(dbc dbctx.Context, courseID uuid.UUID, in ModuleInput) (*types.EContentModule, error)
	Get(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error)
	DeleteModule(dbc dbctx.Context, courseID, moduleID uuid.UUID) error
	DeleteFile(dbc dbctx.Context, courseID, moduleID, fileID uuid.UUID) error
}

type econtentService struct {
	db           *gorm.DB
	log          *logger.Logger
	access       accessResolver
	econtentRepo repos.EContentRepo
	media        *MediaStore
	now          func() time.Time
}

func NewEContentService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	econtentRepo repos.EContentRepo,
	media *MediaStore,
) EContentService {
	return &econtentService{
		db:  db,
		log: log.With("service", "EContentService"),
		access: accessResolver{
			teacherRepo:    teacherRepo,
			studentRepo:    studentRepo,
			courseRepo:     courseRepo,
			enrollmentRepo: enrollmentRepo,
		},
		econtentRepo: econtentRepo,
		media:        media,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (es *econtentService) AddModule(dbc dbctx.Context, courseID uuid.UUID, in ModuleInput) (*types.EContentModule, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title_required", "module title is required")
	}
	if in.ModuleNumber <= 0 {
		return nil, apierr.BadRequest("invalid_module_number", "module_number must be positive")
	}

	var module *types.EContentModule
	var uploaded []string
	err = es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := es.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		ec, err := es.econtentRepo.FindOrCreate(inner, courseID)
		if err != nil {
			return apierr.FromDB(err, "econtent")
		}
		now := es.now()
		module, err = es.econtentRepo.CreateModule(inner, &types.EContentModule{
			EContentID:   ec.ID,
			ModuleNumber: in.ModuleNumber,
			Title:        title,
			CreatedAt:    now,
		})
		if err != nil {
			err = apierr.FromDB(err, "module")
			if apierr.IsStatus(err, http.StatusConflict) {
				return apierr.Conflict("module_number_taken", "module number already exists in this course")
			}
			return err
		}

		objs, err := es.media.putAll(inner, filetype.Any, "econtent/"+courseID.String(), in.Files)
		if err != nil {
			return err
		}
		uploaded = objectKeys(objs)
		files := make([]*types.EContentFile, 0, len(objs))
		for _, o := range objs {
			files = append(files, &types.EContentFile{
				ModuleID:  module.ID,
				FileType:  types.EContentFileTypeFor(o.Name),
				FileName:  o.Name,
				FileURL:   o.URL,
				FileKey:   o.Key,
				CreatedAt: now,
			})
		}
		module.Files, err = es.econtentRepo.CreateFiles(inner, files)
		if err != nil {
			return apierr.FromDB(err, "econtent_file")
		}
		return nil
	})
	if err != nil {
		es.media.removeBestEffort(dbc.Ctx, uploaded...)
		return nil, err
	}
	logger.FromContext(dbc.Ctx, es.log).Info("E-content module added",
		"course_id", courseID,
		"module_number", module.ModuleNumber,
		"files", len(module.Files),
	)
	return module, nil
}

func (es *econtentService) Get(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if _, err := es.access.readableCourse(dbc, rd, courseID); err != nil {
		return nil, err
	}
	ec, err := es.econtentRepo.GetByCourseID(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "econtent")
	}
	if ec == nil {
		return &types.EContent{CourseID: courseID, Modules: []*types.EContentModule{}}, nil
	}
	return ec, nil
}

func (es *econtentService) DeleteModule(dbc dbctx.Context, courseID, moduleID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	var keys []string
	err = es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := es.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		m, err := es.econtentRepo.GetModule(inner, courseID, moduleID)
		if err != nil {
			return apierr.FromDB(err, "module")
		}
		keys, err = es.econtentRepo.ListFileKeysByModuleID(inner, m.ID)
		if err != nil {
			return apierr.FromDB(err, "econtent_file")
		}
		if _, err := es.econtentRepo.DeleteModuleByID(inner, m.ID); err != nil {
			return apierr.FromDB(err, "module")
		}
		return nil
	})
	if err != nil {
		return err
	}
	es.media.removeBestEffort(dbc.Ctx, keys...)
	return nil
}

func (es *econtentService) DeleteFile(dbc dbctx.Context, courseID, moduleID, fileID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	var key string
	err = es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := es.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		m, err := es.econtentRepo.GetModule(inner, courseID, moduleID)
		if err != nil {
			return apierr.FromDB(err, "module")
		}
		f, err := es.econtentRepo.GetFile(inner, m.ID, fileID)
		if err != nil {
			return apierr.FromDB(err, "econtent_file")
		}
		if _, err := es.econtentRepo.DeleteFileByID(inner, f.ID); err != nil {
			return apierr.FromDB(err, "econtent_file")
		}
		key = f.FileKey
		return nil
	})
	if err != nil {
		return err
	}
	es.media.removeBestEffort(dbc.Ctx, key)
	return nil
}
