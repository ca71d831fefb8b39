package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.vocdoni.io/dvote/log"

	"github.com/boriskantorovich/nonprofit-donation-form/errors"
)

// keys for storing models in context
type (
	ModelKey          struct{}
	ValidatedModelKey struct{}
)

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns a string representation of the validation errors.
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// AddModelMiddleware adds the provided model to the request context.
func (v *Validator) AddModelMiddleware(model interface{}) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ModelKey{}, model)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InputValidator validates the JSON request body against the model stored in
// the context. If successful, the validated instance is added to the context
// for downstream handlers. Routes without a registered model pass through
// with the body untouched, which keeps raw payloads intact for signature
// verification.
func (v *Validator) InputValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only validate for methods that may have a body.
		if r.Method == http.MethodGet || r.Method == http.MethodHead ||
			r.Method == http.MethodOptions || r.Method == http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		// Retrieve the model from context.
		model, ok := r.Context().Value(ModelKey{}).(any)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		modelType := reflect.TypeOf(model)
		instance := reflect.New(modelType).Interface()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			errors.ErrMalformedBody.Write(w)
			return
		}
		// Reset the body for downstream use.
		r.Body = io.NopCloser(bytes.NewBuffer(body))

		if err := json.Unmarshal(body, instance); err != nil {
			errors.ErrMalformedBody.Write(w)
			return
		}

		if err := v.validator.Struct(instance); err != nil {
			fieldErrors, ok := err.(validator.ValidationErrors)
			if !ok {
				errors.ErrMalformedBody.WithErr(err).Write(w)
				return
			}
			var validationErrors ValidationErrors
			for _, fieldErr := range fieldErrors {
				validationErrors = append(validationErrors, ValidationError{
					Field:   fieldErr.Field(),
					Message: getErrorMessage(fieldErr),
				})
			}
			log.Debugw("validation errors", "errors", validationErrors)
			apiError(fieldErrors).Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), ValidatedModelKey{}, instance)
		r.Body = io.NopCloser(bytes.NewBuffer(body))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetValidatedModel retrieves the validated model from the context.
func GetValidatedModel(ctx context.Context) (interface{}, bool) {
	model, ok := ctx.Value(ValidatedModelKey{}).(interface{})
	return model, ok
}

// apiError maps a set of field validation failures to the API error they
// should surface as. Missing fields take precedence over range failures.
func apiError(fieldErrors validator.ValidationErrors) errors.Error {
	for _, fieldErr := range fieldErrors {
		if fieldErr.Tag() == "required" {
			return errors.ErrMissingRequiredFields
		}
	}
	for _, fieldErr := range fieldErrors {
		if fieldErr.Tag() == "donation_amount" {
			return errors.ErrInvalidAmount
		}
	}
	var validationErrors ValidationErrors
	for _, fieldErr := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: getErrorMessage(fieldErr),
		})
	}
	return errors.ErrMalformedBody.WithErr(validationErrors)
}

// getErrorMessage returns a human-readable error message for a validation error.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "donation_amount":
		return "Amount out of the accepted donation range"
	case "min":
		return fmt.Sprintf("Must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", err.Param())
	default:
		return fmt.Sprintf("Invalid value: %s", err.Tag())
	}
}
