package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "vgpulse/internal/errors"
	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// QueryParamValidator parses and validates query parameters, writing an
// RFC 7807 response when a parameter is rejected.
type QueryParamValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryParamValidator{
		validator:    v,
		logger:       infrastructure.WithComponent(logger, "query_validator"),
		errorHandler: errorHandler,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (v *QueryParamValidator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// Dimension reads the dimension parameter, defaulting to Platform
func (v *QueryParamValidator) Dimension(w http.ResponseWriter, r *http.Request) (domain.CategoryDimension, bool) {
	value := r.URL.Query().Get("dimension")
	if value == "" {
		return domain.DimensionPlatform, true
	}

	dim, err := domain.ParseCategoryDimension(value)
	if err != nil {
		v.reject(w, r, "dimension", fmt.Sprintf("dimension must be one of: %s", joinDimensions()))
		return "", false
	}
	return dim, true
}

// DistributionRequest reads dimension, mode and category into a request
func (v *QueryParamValidator) DistributionRequest(w http.ResponseWriter, r *http.Request) (domain.DistributionRequest, bool) {
	dim, ok := v.Dimension(w, r)
	if !ok {
		return domain.DistributionRequest{}, false
	}

	mode, err := domain.ParseDisplayMode(r.URL.Query().Get("mode"))
	if err != nil {
		v.reject(w, r, "mode", "mode must be one of: all, single")
		return domain.DistributionRequest{}, false
	}

	req := domain.DistributionRequest{
		Dimension: dim,
		Mode:      mode,
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
	}
	if mode == domain.ModeAllCategories {
		req.Category = ""
	}

	if err := v.ValidateStruct(req); err != nil {
		v.logger.DebugContext(r.Context(), "distribution request rejected",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()),
		)
		v.errorHandler.HandleError(w, r, err)
		return domain.DistributionRequest{}, false
	}
	return req, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}

	v.reject(w, r, param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
	return "", false
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, message string) {
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, message))
}

func joinDimensions() string {
	names := make([]string, len(domain.Dimensions))
	for i, d := range domain.Dimensions {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, "' '", "', '"))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
