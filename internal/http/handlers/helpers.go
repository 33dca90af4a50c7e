package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/services"
)

// timeLayout is the layout accepted for multipart time fields.
const timeLayout = "2006-01-02T15:04:05Z07:00"

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// uuidParam parses a path parameter, answering 400 itself when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_"+toSnake(name), name+" must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fileUpload(fh *multipart.FileHeader) services.FileUpload {
	return services.FileUpload{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// formFile returns the single upload under field, or nil when the request carries none.
func formFile(c *gin.Context, field string) *services.FileUpload {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil
	}
	up := fileUpload(fh)
	return &up
}

// formFiles returns every upload under field; non-multipart requests have none.
func formFiles(c *gin.Context, field string) []services.FileUpload {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	fhs := form.File[field]
	out := make([]services.FileUpload, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, fileUpload(fh))
	}
	return out
}

// bind decodes the body by content type and answers 400 itself on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		response.RespondBindError(c, err)
		return false
	}
	return true
}
