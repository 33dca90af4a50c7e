package apierr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Stack renders the stack captured when the error was built, or "" if none.
func (e *Error) Stack() string {
	if e == nil || e.Err == nil {
		return ""
	}
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	var st stackTracer
	if stderrors.As(e.Err, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

func New(status int, code string, err error) *Error {
	if err == nil {
		err = stderrors.New(http.StatusText(status))
	}
	return &Error{Status: status, Code: code, Err: errors.WithStack(err)}
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, stderrors.New(msg))
}

func Forbidden(code, msg string) *Error {
	return New(http.StatusForbidden, code, stderrors.New(msg))
}

func Conflict(code, msg string) *Error {
	return New(http.StatusConflict, code, stderrors.New(msg))
}

func BadRequest(code, msg string) *Error {
	return New(http.StatusBadRequest, code, stderrors.New(msg))
}

func Unauthorized(code, msg string) *Error {
	return New(http.StatusUnauthorized, code, stderrors.New(msg))
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// FromDB classifies a persistence error. Already-classified errors pass through.
func FromDB(err error, code string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return err
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return New(http.StatusNotFound, code+"_not_found", err)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return New(http.StatusConflict, code+"_conflict", err)
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return New(http.StatusConflict, code+"_in_use", err)
	default:
		return New(http.StatusInternalServerError, code+"_failed", err)
	}
}

// As returns the classified error, wrapping unknown errors as Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae
	}
	return Internal("internal", err)
}

func IsStatus(err error, status int) bool {
	var ae *Error
	return stderrors.As(err, &ae) && ae.Status == status
}
