package pkg

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/pension/internal/domain"
)

// ValidationResult is the failure envelope for rejected input. Errors maps
// JSON field names to the failed validation rule.
type ValidationResult struct {
	ResponseCode        string            `json:"responseCode"`
	ResponseDescription string            `json:"responseDescription"`
	Errors              map[string]string `json:"errors,omitempty"`
}

// Success sends a 200 envelope carrying data.
func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, NewSuccessDataResult(data, ""))
}

// Created sends a 201 envelope carrying data.
func Created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, NewSuccessDataResult(data, "created"))
}

// OK sends a 200 envelope without a payload.
func OK(c *gin.Context, description string) {
	c.JSON(http.StatusOK, NewSuccessResult(description))
}

// List sends a 200 envelope carrying a page.
func List[T any](c *gin.Context, page *domain.Page[T]) {
	if page == nil {
		page = &domain.Page[T]{}
	}
	c.JSON(http.StatusOK, NewSuccessDataResult(*page, ""))
}

// Error sends a failure envelope. A *domain.AppError provides the code and
// description and selects the HTTP status; any other error becomes an
// internal error and is logged.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	code, msg := domain.CodeInternal, "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Code != "" && appErr.Code != CodeSuccess {
		code, msg = appErr.Code, appErr.Message
		if msg == "" {
			msg = "request failed"
		}
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", errorString(err)),
		)
	}

	c.JSON(status, NewErrorResult(code, msg))
}

// Abort is Error followed by c.Abort, for middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// ValidationError sends a 400 envelope with per-field validation details.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType prefers JSON tag names when obj is non-nil.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ValidationResult{
			ResponseCode:        CodeValidationFailed,
			ResponseDescription: "invalid request: " + err.Error(),
		})
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonTags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fieldErrors[name] = msg
	}

	c.JSON(http.StatusBadRequest, ValidationResult{
		ResponseCode:        CodeValidationFailed,
		ResponseDescription: "validation failed",
		Errors:              fieldErrors,
	})
}

func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

func parseJSONTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func errorString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
