package services

import (
	"fmt"
	"net/url"
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

type EventInput struct {
	Name        string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Link        string
	Image       *FileUpload
}

// EventUpdate changes only the non-nil fields. A new Image replaces the old one;
// RemoveImage clears it.
type EventUpdate struct {
	Name        *string
	Description *string
	Date        *time.Time
	Time        *string
	Location    *string
	Link        *string
	Image       *FileUpload
	RemoveImage bool
}

type EventService interface {
	Create(dbc dbctx.Context, in EventInput) (*types.Event, error)
	Update(dbc dbctx.Context, eventID uuid.UUID, in EventUpdate) (*types.Event, error)
	Delete(dbc dbctx.Context, eventID uuid.UUID) error
	Get(dbc dbctx.Context, eventID uuid.UUID) (*types.Event, error)
	List(dbc dbctx.Context) ([]*types.Event, error)
}

type eventService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.EventRepo
	media     *MediaStore
}

func NewEventService(db *gorm.DB, log *logger.Logger, eventRepo repos.EventRepo, media *MediaStore) EventService {
	return &eventService{
		db:        db,
		log:       log.With("service", "EventService"),
		eventRepo: eventRepo,
		media:     media,
	}
}

// validateEventLink requires an absolute http(s) URL.
func validateEventLink(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apierr.BadRequest("link_required", "link is required")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apierr.BadRequest("invalid_link", fmt.Sprintf("link %q must be an absolute http(s) URL", raw))
	}
	return nil
}

func validateEvent(e *types.Event) error {
	if strings.TrimSpace(e.Name) == "" {
		return apierr.BadRequest("name_required", "name is required")
	}
	if e.Date.IsZero() {
		return apierr.BadRequest("date_required", "date is required")
	}
	return validateEventLink(e.Link)
}

func (es *eventService) Create(dbc dbctx.Context, in EventInput) (*types.Event, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	ev := &types.Event{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.UTC(),
		Time:        strings.TrimSpace(in.Time),
		Location:    strings.TrimSpace(in.Location),
		Link:        strings.TrimSpace(in.Link),
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	var uploaded string
	err = es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if in.Image != nil {
			obj, err := es.media.put(inner, filetype.Image, "events", *in.Image)
			if err != nil {
				return err
			}
			uploaded = obj.Key
			ev.Image = obj.URL
			ev.ImageKey = obj.Key
		}
		if _, err := es.eventRepo.Create(inner, ev); err != nil {
			return apierr.FromDB(err, "event")
		}
		return nil
	})
	if err != nil {
		es.media.removeBestEffort(dbc.Ctx, uploaded)
		return nil, err
	}
	logger.FromContext(dbc.Ctx, es.log).Info("Event created", "event_id", ev.ID)
	return ev, nil
}

func (es *eventService) Update(dbc dbctx.Context, eventID uuid.UUID, in EventUpdate) (*types.Event, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}

	var out *types.Event
	var uploaded, replaced string
	err = es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		ev, err := es.eventRepo.GetByID(inner, eventID)
		if err != nil {
			return apierr.FromDB(err, "event")
		}
		applyEventUpdate(ev, in)
		if err := validateEvent(ev); err != nil {
			return err
		}
		switch {
		case in.Image != nil:
			obj, err := es.media.put(inner, filetype.Image, "events", *in.Image)
			if err != nil {
				return err
			}
			uploaded = obj.Key
			replaced = ev.ImageKey
			ev.Image, ev.ImageKey = obj.URL, obj.Key
		case in.RemoveImage:
			replaced = ev.ImageKey
			ev.Image, ev.ImageKey = "", ""
		}
		if err := es.eventRepo.Save(inner, ev); err != nil {
			return apierr.FromDB(err, "event")
		}
		out = ev
		return nil
	})
	if err != nil {
		es.media.removeBestEffort(dbc.Ctx, uploaded)
		return nil, err
	}
	es.media.removeBestEffort(dbc.Ctx, replaced)
	return out, nil
}

func applyEventUpdate(ev *types.Event, in EventUpdate) {
	if in.Name != nil {
		ev.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		ev.Description = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		ev.Date = in.Date.UTC()
	}
	if in.Time != nil {
		ev.Time = strings.TrimSpace(*in.Time)
	}
	if in.Location != nil {
		ev.Location = strings.TrimSpace(*in.Location)
	}
	if in.Link != nil {
		ev.Link = strings.TrimSpace(*in.Link)
	}
}

func (es *eventService) Delete(dbc dbctx.Context, eventID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return err
	}
	var imageKey string
	if err := es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		ev, err := es.eventRepo.GetByID(inner, eventID)
		if err != nil {
			return apierr.FromDB(err, "event")
		}
		if _, err := es.eventRepo.DeleteByID(inner, ev.ID); err != nil {
			return apierr.FromDB(err, "event")
		}
		imageKey = ev.ImageKey
		return nil
	}); err != nil {
		return err
	}
	es.media.removeBestEffort(dbc.Ctx, imageKey)
	return nil
}

func (es *eventService) Get(dbc dbctx.Context, eventID uuid.UUID) (*types.Event, error) {
	ev, err := es.eventRepo.GetByID(dbc, eventID)
	if err != nil {
		return nil, apierr.FromDB(err, "event")
	}
	return ev, nil
}

func (es *eventService) List(dbc dbctx.Context) ([]*types.Event, error) {
	out, err := es.eventRepo.List(dbc)
	if err != nil {
		return nil, apierr.FromDB(err, "event")
	}
	return out, nil
}
