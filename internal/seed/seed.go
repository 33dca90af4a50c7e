// Package seed loads YAML fixtures that bootstrap a fresh deployment: the first
// admin, staff accounts, semesters and campus events.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
)

const dateLayout = "2006-01-02"

type Account struct {
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	Role         string `yaml:"role"`
	Program      string `yaml:"program"`
	Semester     string `yaml:"semester"`
	TeacherEmail string `yaml:"teacher_email"`
}

type Semester struct {
	Name      string `yaml:"name"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type Event struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Link        string `yaml:"link"`
}

type Fixtures struct {
	Admin     Account    `yaml:"admin"`
	Users     []Account  `yaml:"users"`
	Semesters []Semester `yaml:"semesters"`
	Events    []Event    `yaml:"events"`
}

// Load decodes fixtures, rejecting unknown keys.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fixtures file is empty")
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if strings.TrimSpace(f.Admin.Email) == "" {
		return nil, fmt.Errorf("fixtures: admin.email is required")
	}
	return &f, nil
}

type Report struct {
	AdminCreated     bool
	UsersCreated     int
	UsersSkipped     int
	SemestersCreated int
	SemestersSkipped int
	EventsCreated    int
	EventsSkipped    int
}

type Seeder struct {
	log       *logger.Logger
	users     services.UserService
	semesters services.SemesterService
	events    services.EventService
}

func NewSeeder(log *logger.Logger, users services.UserService, semesters services.SemesterService, events services.EventService) *Seeder {
	return &Seeder{log: log.With("component", "Seeder"), users: users, semesters: semesters, events: events}
}

// Apply is safe to rerun: existing accounts, semesters (by name) and events
// (by name and date) are skipped.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (*Report, error) {
	rep := &Report{}
	admin, created, err := s.users.BootstrapAdmin(dbctx.Context{Ctx: ctx}, services.AccountInput{
		Name:     f.Admin.Name,
		Email:    f.Admin.Email,
		Password: f.Admin.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("admin %s: %w", f.Admin.Email, err)
	}
	rep.AdminCreated = created

	dbc := dbctx.Context{Ctx: ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID: admin.ID,
		Role:   string(types.RoleAdmin),
	})}

	for _, u := range f.Users {
		_, err := s.users.CreateUser(dbc, services.AccountInput{
			Name:         u.Name,
			Email:        u.Email,
			Password:     u.Password,
			Role:         types.Role(strings.ToLower(strings.TrimSpace(u.Role))),
			Program:      u.Program,
			Semester:     u.Semester,
			TeacherEmail: u.TeacherEmail,
		})
		if apierr.IsStatus(err, http.StatusConflict) {
			rep.UsersSkipped++
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("user %s: %w", u.Email, err)
		}
		rep.UsersCreated++
	}

	if err := s.applySemesters(dbc, f.Semesters, rep); err != nil {
		return rep, err
	}
	if err := s.applyEvents(dbc, f.Events, rep); err != nil {
		return rep, err
	}
	s.log.Info("Fixtures applied",
		"admin_created", rep.AdminCreated,
		"users_created", rep.UsersCreated,
		"semesters_created", rep.SemestersCreated,
		"events_created", rep.EventsCreated,
	)
	return rep, nil
}

func (s *Seeder) applySemesters(dbc dbctx.Context, in []Semester, rep *Report) error {
	existing, err := s.semesters.List(dbc)
	if err != nil {
		return fmt.Errorf("list semesters: %w", err)
	}
	have := map[string]bool{}
	for _, sem := range existing {
		have[strings.ToLower(sem.Name)] = true
	}
	for _, sem := range in {
		if have[strings.ToLower(strings.TrimSpace(sem.Name))] {
			rep.SemestersSkipped++
			continue
		}
		start, err := time.Parse(dateLayout, sem.StartDate)
		if err != nil {
			return fmt.Errorf("semester %s: start_date: %w", sem.Name, err)
		}
		end, err := time.Parse(dateLayout, sem.EndDate)
		if err != nil {
			return fmt.Errorf("semester %s: end_date: %w", sem.Name, err)
		}
		if _, err := s.semesters.Create(dbc, services.SemesterInput{Name: sem.Name, StartDate: start, EndDate: end}); err != nil {
			return fmt.Errorf("semester %s: %w", sem.Name, err)
		}
		have[strings.ToLower(strings.TrimSpace(sem.Name))] = true
		rep.SemestersCreated++
	}
	return nil
}

func eventKey(name string, date time.Time) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + date.UTC().Format(dateLayout)
}

func (s *Seeder) applyEvents(dbc dbctx.Context, in []Event, rep *Report) error {
	existing, err := s.events.List(dbc)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	have := map[string]bool{}
	for _, ev := range existing {
		have[eventKey(ev.Name, ev.Date)] = true
	}
	for _, ev := range in {
		date, err := time.Parse(dateLayout, ev.Date)
		if err != nil {
			return fmt.Errorf("event %s: date: %w", ev.Name, err)
		}
		if have[eventKey(ev.Name, date)] {
			rep.EventsSkipped++
			continue
		}
		if _, err := s.events.Create(dbc, services.EventInput{
			Name:        ev.Name,
			Description: ev.Description,
			Date:        date,
			Time:        ev.Time,
			Location:    ev.Location,
			Link:        ev.Link,
		}); err != nil {
			return fmt.Errorf("event %s: %w", ev.Name, err)
		}
		have[eventKey(ev.Name, date)] = true
		rep.EventsCreated++
	}
	return nil
}
