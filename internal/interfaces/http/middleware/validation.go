package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/interfaces/http/dto"
)

var setupValidatorOnce sync.Once

// SetupValidator makes field errors use JSON names and registers the
// tramite_status tag, which accepts only lifecycle status names. It is
// idempotent; request DTOs using tramite_status panic on bind without it.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("tramite_status", func(fl validator.FieldLevel) bool {
			return tramite.Status(fl.Field().String()).IsValid()
		})
	})
}

// HandleValidationError answers 400 with one detail per failing field.
// Errors that are not validator errors (malformed JSON, wrong types) carry
// no details.
func HandleValidationError(c *gin.Context, err error) {
	var details []dto.ValidationDetail
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		details = make([]dto.ValidationDetail, len(fieldErrors))
		for i, fe := range fieldErrors {
			details[i] = dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)}
		}
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

// fieldMessages are keyed by tag; %s is the tag parameter. Length tags get
// a "characters" suffix on strings.
var fieldMessages = map[string]string{
	"required":       "This field is required",
	"uuid":           "Invalid UUID format",
	"tramite_status": "Unknown trámite status",
	"min":            "Must be at least %s",
	"max":            "Must be at most %s",
	"oneof":          "Must be one of: %s",
}

func fieldMessage(fe validator.FieldError) string {
	format, ok := fieldMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	if !strings.Contains(format, "%s") {
		return format
	}
	msg := fmt.Sprintf(format, fe.Param())
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
