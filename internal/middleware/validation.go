package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
	"github.com/yigit/prelimplanner/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules and makes validation
// errors report the JSON or form name of a field instead of its Go name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := validation.Register(v); err != nil {
			logger.Error().Err(err).Msg("Failed to register custom validators")
		}
		registerTagNames(v)
	})
}

func registerTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// HandleBindError answers a request whose body or query failed to bind.
func HandleBindError(c *gin.Context, err error) {
	body := dto.NewErrorResponse(dto.ErrorCodeValidationFailed, "Invalid request format")

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
		}
		body.Error = fields[0].Message
		body.WithFields(fields)
	} else {
		body.Error = "Invalid request format: " + err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must have at least " + e.Param() + " entries"
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case validation.TagSemester:
		return e.Field() + " must contain only letters, digits and spaces"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
