package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/validation"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const exposeStackKey = "response.expose_stack"

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ExposeStacks marks responses on this route tree to carry error stack traces.
func ExposeStacks(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(exposeStackKey, enabled)
		c.Next()
	}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders any service error through the apierr taxonomy.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	body := APIError{Message: ae.Error(), Code: ae.Code}
	if ae.Status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), nil).Error("Request failed", "code", ae.Code, "error", ae.Error())
		if !c.GetBool(exposeStackKey) {
			body.Message = http.StatusText(ae.Status)
		}
	}
	if c.GetBool(exposeStackKey) {
		body.Stack = ae.Stack()
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{Error: body})
}

// RespondBindError answers a failed ShouldBind* call with 400 and per-field messages.
func RespondBindError(c *gin.Context, err error) {
	body := APIError{Message: "invalid request", Code: "invalid_request"}
	if fields, ok := validation.Fields(err); ok {
		body.Code = "validation_failed"
		body.Fields = fields
	} else if err != nil {
		body.Message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
