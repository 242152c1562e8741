package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/safefam/api/pkg/httputil"
	customvalidator "github.com/safefam/api/pkg/validator"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationConfig struct {
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomErrorMessages: map[string]string{
			"required":   "Field is required",
			"email":      "Invalid email format",
			"min":        "Value is too short",
			"max":        "Value is too long",
			"url":        "Invalid URL",
			"isodate":    "Date must be YYYY-MM-DD",
			"clock":      "Time must be HH:MM",
			"bloodtype":  "Unknown blood type",
			"apptstatus": "Status must be scheduled, completed or cancelled",
		},
	}
}

// InstallValidators registers the custom binding tags and reports fields by
// their JSON names. It must run before the first request is bound.
func InstallValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := customvalidator.Register(v); err != nil {
		return err
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// Validation turns binding errors attached by handlers into a 400 with
// per-field messages.
func Validation(config ValidationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var validationErrors []ValidationError
		var bindErr error
		for _, e := range c.Errors {
			var errs validator.ValidationErrors
			if errors.As(e.Err, &errs) {
				for _, fe := range errs {
					msg := config.CustomErrorMessages[fe.Tag()]
					if msg == "" {
						msg = fe.Error()
					}
					validationErrors = append(validationErrors, ValidationError{
						Field:   fe.Field(),
						Message: msg,
					})
				}
				continue
			}
			if e.IsType(gin.ErrorTypeBind) {
				bindErr = e.Err
			}
		}

		switch {
		case len(validationErrors) > 0:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "validation failed",
				"errors":  validationErrors,
			})
		case bindErr != nil:
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Response{
				Status:  "error",
				Message: "invalid request body: " + bindErr.Error(),
			})
		}
	}
}
