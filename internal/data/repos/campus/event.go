package campus

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, event *types.Event) (*types.Event, error)
	GetByID(dbc dbctx.Context, eventID uuid.UUID) (*types.Event, error)
	List(dbc dbctx.Context) ([]*types.Event, error)
	Save(dbc dbctx.Context, event *types.Event) error
	DeleteByID(dbc dbctx.Context, eventID uuid.UUID) (int64, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	repoLog := baseLog.With("repo", "EventRepo")
	return &eventRepo{db: db, log: repoLog}
}

func (r *eventRepo) Create(dbc dbctx.Context, event *types.Event) (*types.Event, error) {
	if err := dbc.DB(r.db).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepo) GetByID(dbc dbctx.Context, eventID uuid.UUID) (*types.Event, error) {
	var e types.Event
	if err := dbc.DB(r.db).Where("id = ?", eventID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(dbc dbctx.Context) ([]*types.Event, error) {
	var results []*types.Event
	if err := dbc.DB(r.db).
		Order("date ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *eventRepo) Save(dbc dbctx.Context, event *types.Event) error {
	return dbc.DB(r.db).Save(event).Error
}

func (r *eventRepo) DeleteByID(dbc dbctx.Context, eventID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", eventID).Delete(&types.Event{})
	return res.RowsAffected, res.Error
}
