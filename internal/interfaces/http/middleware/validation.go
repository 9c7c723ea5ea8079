package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator reports JSON field names in errors and registers the
// fuente and step tags.
func SetupValidator() {
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
	_ = v.RegisterValidation("fuente", func(fl validator.FieldLevel) bool {
		return client.FundingSource(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("step", func(fl validator.FieldLevel) bool {
		return client.StepKey(fl.Field().String()).IsValid()
	})
}

// HandleValidationError answers 400 for a binding failure. Field errors
// are listed; malformed JSON gets a single message.
func HandleValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Malformed request body: "+err.Error(), GetRequestID(c)))
		return
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url":
		return "Invalid URL format"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "fuente":
		return "Unknown funding source"
	case "step":
		return "Unknown process step"
	default:
		return "Invalid value"
	}
}
