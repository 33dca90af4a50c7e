package services

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const minPasswordLen = 8

// AccountInput creates a user and, for teachers and students, the matching profile.
type AccountInput struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         types.Role `json:"role"`
	Program      string     `json:"program,omitempty"`
	Semester     string     `json:"semester,omitempty"`
	TeacherEmail string     `json:"teacher_email,omitempty"`
}

type Profile struct {
	User    *types.User    `json:"user"`
	Teacher *types.Teacher `json:"teacher,omitempty"`
	Student *types.Student `json:"student,omitempty"`
}

type ImportResult struct {
	Created  int              `json:"created"`
	Students []*types.Student `json:"students"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*Profile, error)
	// Register is self-service sign-up; only student and teacher accounts may be created.
	Register(dbc dbctx.Context, in AccountInput) (*Profile, error)
	CreateUser(dbc dbctx.Context, in AccountInput) (*Profile, error)
	// BootstrapAdmin creates the admin account unless the email is already taken.
	// It takes no caller and is not routed; the seed command uses it.
	BootstrapAdmin(dbc dbctx.Context, in AccountInput) (*types.User, bool, error)
	// ImportStudents creates every student row of an .xlsx workbook in one transaction.
	ImportStudents(dbc dbctx.Context, r io.Reader) (*ImportResult, error)
	ListTeachers(dbc dbctx.Context) ([]*types.Teacher, error)
	ListMyStudents(dbc dbctx.Context) ([]*types.Student, error)
	ListUnassignedStudents(dbc dbctx.Context) ([]*types.Student, error)
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	teacherRepo    repos.TeacherRepo
	studentRepo    repos.StudentRepo
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
	avatarService  AvatarService
	now            func() time.Time
}

// NewUserService accepts a nil avatarService; accounts are then created without avatars.
func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	avatarService AvatarService,
) UserService {
	return &userService{
		db:             db,
		log:            log.With("service", "UserService"),
		userRepo:       userRepo,
		teacherRepo:    teacherRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		avatarService:  avatarService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*Profile, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, apierr.FromDB(err, "user")
	}
	p := &Profile{User: u}
	switch u.Role {
	case types.RoleTeacher:
		t, err := us.teacherRepo.GetByUserID(dbc, u.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.FromDB(err, "teacher")
		}
		p.Teacher = t
	case types.RoleStudent:
		s, err := us.studentRepo.GetByUserID(dbc, u.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.FromDB(err, "student")
		}
		p.Student = s
	}
	return p, nil
}

func (us *userService) Register(dbc dbctx.Context, in AccountInput) (*Profile, error) {
	if in.Role == "" {
		in.Role = types.RoleStudent
	}
	if in.Role == types.RoleAdmin {
		return nil, apierr.BadRequest("invalid_role", "admin accounts cannot self-register")
	}
	return us.createInTx(dbc, in)
}

func (us *userService) CreateUser(dbc dbctx.Context, in AccountInput) (*Profile, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	return us.createInTx(dbc, in)
}

func (us *userService) BootstrapAdmin(dbc dbctx.Context, in AccountInput) (*types.User, bool, error) {
	in.Role = types.RoleAdmin
	existing, err := us.userRepo.GetByEmail(dbc, normalizeEmail(in.Email))
	if err == nil {
		if existing.Role != types.RoleAdmin {
			return nil, false, apierr.Conflict("email_taken", fmt.Sprintf("email %s belongs to a %s", existing.Email, existing.Role))
		}
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apierr.FromDB(err, "user")
	}
	p, err := us.createInTx(dbc, in)
	if err != nil {
		return nil, false, err
	}
	return p.User, true, nil
}

func (us *userService) createInTx(dbc dbctx.Context, in AccountInput) (*Profile, error) {
	var out *Profile
	batch := newAccountBatch()
	if err := us.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		p, err := us.createAccount(inner, in, batch)
		if err != nil {
			return err
		}
		out = p
		return nil
	}); err != nil {
		us.discardAvatars(dbc, batch)
		return nil, err
	}
	logger.FromContext(dbc.Ctx, us.log).Info("Account created", "user_id", out.User.ID, "role", out.User.Role)
	return out, nil
}

// accountBatch is shared by createAccount calls in one transaction. It caches teacher
// lookups by email and records uploaded avatar keys for cleanup on rollback.
type accountBatch struct {
	teachers   map[string]*types.Teacher
	avatarKeys []string
}

func newAccountBatch() *accountBatch {
	return &accountBatch{teachers: map[string]*types.Teacher{}}
}

func (us *userService) discardAvatars(dbc dbctx.Context, batch *accountBatch) {
	if us.avatarService == nil || len(batch.avatarKeys) == 0 {
		return
	}
	us.avatarService.DeleteUserAvatars(dbc.Ctx, batch.avatarKeys...)
}

// createAccount writes the user and profile rows. Must run inside a transaction.
func (us *userService) createAccount(dbc dbctx.Context, in AccountInput, batch *accountBatch) (*Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.TeacherEmail = normalizeEmail(in.TeacherEmail)
	if err := validateAccount(in); err != nil {
		return nil, err
	}

	exists, err := us.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, apierr.FromDB(err, "user")
	}
	if exists {
		return nil, apierr.Conflict("email_taken", fmt.Sprintf("email %s is already registered", in.Email))
	}

	var teacher *types.Teacher
	if in.Role == types.RoleStudent && in.TeacherEmail != "" {
		teacher = batch.teachers[in.TeacherEmail]
		if teacher == nil {
			t, err := us.teacherRepo.GetByEmail(dbc, in.TeacherEmail)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierr.NotFound("teacher_not_found", fmt.Sprintf("no teacher with email %s", in.TeacherEmail))
			}
			if err != nil {
				return nil, apierr.FromDB(err, "teacher")
			}
			batch.teachers[in.TeacherEmail] = t
			teacher = t
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal("password_hash_failed", err)
	}
	user := &types.User{
		ID:       uuid.New(),
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
	}
	if us.avatarService != nil {
		if err := us.avatarService.CreateAndUploadUserAvatar(dbc, user); err != nil {
			return nil, apierr.Internal("avatar_upload_failed", err)
		}
		batch.avatarKeys = append(batch.avatarKeys, user.AvatarBucketKey)
	}
	if _, err := us.userRepo.Create(dbc, []*types.User{user}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("email_taken", fmt.Sprintf("email %s is already registered", in.Email))
		}
		return nil, apierr.FromDB(err, "user")
	}

	p := &Profile{User: user}
	switch in.Role {
	case types.RoleTeacher:
		created, err := us.teacherRepo.Create(dbc, []*types.Teacher{{UserID: user.ID, Email: user.Email}})
		if err != nil {
			return nil, apierr.FromDB(err, "teacher")
		}
		p.Teacher = created[0]
	case types.RoleStudent:
		s := &types.Student{UserID: user.ID, Program: strings.TrimSpace(in.Program), Semester: strings.TrimSpace(in.Semester)}
		if teacher != nil {
			s.TeacherID = &teacher.ID
			s.TeacherEmail = teacher.Email
		}
		created, err := us.studentRepo.Create(dbc, []*types.Student{s})
		if err != nil {
			return nil, apierr.FromDB(err, "student")
		}
		p.Student = created[0]
		if teacher != nil {
			if _, err := enrollInTeacherCourses(dbc, us.courseRepo, us.enrollmentRepo, s.ID, teacher.ID, us.now()); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func validateAccount(in AccountInput) error {
	if !in.Role.Valid() {
		return apierr.BadRequest("invalid_role", fmt.Sprintf("unknown role %q", in.Role))
	}
	if in.Name == "" {
		return apierr.BadRequest("name_required", "name is required")
	}
	if in.Email == "" {
		return apierr.BadRequest("email_required", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apierr.BadRequest("invalid_email", fmt.Sprintf("invalid email %q", in.Email))
	}
	if len(in.Password) < minPasswordLen {
		return apierr.BadRequest("password_too_short", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if in.TeacherEmail != "" && in.Role != types.RoleStudent {
		return apierr.BadRequest("invalid_teacher_email", "teacher_email only applies to students")
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var importColumns = []string{"name", "email", "password", "program", "semester", "teacher_email"}

func (us *userService) ImportStudents(dbc dbctx.Context, r io.Reader) (*ImportResult, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	rows, err := readStudentSheet(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Students: make([]*types.Student, 0, len(rows))}
	batch := newAccountBatch()
	if err := us.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		seen := map[string]int{}
		for _, row := range rows {
			email := normalizeEmail(row.input.Email)
			if first, dup := seen[email]; dup && email != "" {
				return apierr.Conflict("email_taken", fmt.Sprintf("row %d: email %s duplicates row %d", row.number, email, first))
			}
			seen[email] = row.number
			p, err := us.createAccount(inner, row.input, batch)
			if err != nil {
				return rowError(row.number, err)
			}
			result.Students = append(result.Students, p.Student)
		}
		return nil
	}); err != nil {
		us.discardAvatars(dbc, batch)
		return nil, err
	}
	result.Created = len(result.Students)
	logger.FromContext(dbc.Ctx, us.log).Info("Students imported", "count", result.Created)
	return result, nil
}

type importRow struct {
	number int
	input  AccountInput
}

// readStudentSheet parses the first sheet. Row numbers are spreadsheet rows, so the
// first data row is 2.
func readStudentSheet(r io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Sprintf("cannot read workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierr.BadRequest("invalid_spreadsheet", "workbook has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Sprintf("cannot read rows: %v", err))
	}
	if len(raw) == 0 {
		return nil, apierr.BadRequest("invalid_spreadsheet", "sheet is empty")
	}

	col := map[string]int{}
	for i, h := range raw[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range importColumns[:3] {
		if _, ok := col[required]; !ok {
			return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Sprintf("missing column %q (expected %s)", required, strings.Join(importColumns, ", ")))
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []importRow
	for i, row := range raw[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		out = append(out, importRow{
			number: i + 2,
			input: AccountInput{
				Name:         cell(row, "name"),
				Email:        cell(row, "email"),
				Password:     cell(row, "password"),
				Role:         types.RoleStudent,
				Program:      cell(row, "program"),
				Semester:     cell(row, "semester"),
				TeacherEmail: cell(row, "teacher_email"),
			},
		})
	}
	if len(out) == 0 {
		return nil, apierr.BadRequest("invalid_spreadsheet", "sheet has no data rows")
	}
	return out, nil
}

func rowError(row int, err error) error {
	ae := apierr.As(err)
	return apierr.New(ae.Status, ae.Code, fmt.Errorf("row %d: %s", row, ae.Error()))
}

func (us *userService) ListTeachers(dbc dbctx.Context) ([]*types.Teacher, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin); err != nil {
		return nil, err
	}
	out, err := us.teacherRepo.List(dbc)
	if err != nil {
		return nil, apierr.FromDB(err, "teacher")
	}
	return out, nil
}

func (us *userService) ListMyStudents(dbc dbctx.Context) ([]*types.Student, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleTeacher); err != nil {
		return nil, err
	}
	t, err := us.teacherRepo.GetByUserID(dbc, rd.UserID)
	if err != nil {
		return nil, apierr.FromDB(err, "teacher")
	}
	out, err := us.studentRepo.ListByTeacherID(dbc, t.ID)
	if err != nil {
		return nil, apierr.FromDB(err, "student")
	}
	return out, nil
}

func (us *userService) ListUnassignedStudents(dbc dbctx.Context) ([]*types.Student, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin, types.RoleTeacher); err != nil {
		return nil, err
	}
	out, err := us.studentRepo.ListUnassigned(dbc)
	if err != nil {
		return nil, apierr.FromDB(err, "student")
	}
	return out, nil
}
