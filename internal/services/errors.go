package services

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "vgpulse/internal/errors"
	"vgpulse/pkg/contracts/domain"
)

// InvalidCategoryError is returned when a single-category request names a
// category outside the top list for its dimension.
type InvalidCategoryError struct {
	Dimension domain.CategoryDimension
	Category  string
	Allowed   []string
	err       error
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("category %q is not among the top %s values", e.Category, e.Dimension)
}

func (e *InvalidCategoryError) Unwrap() error {
	if e.err != nil {
		return e.err
	}
	return domain.ErrInvalidCategory
}

// ToAPIError maps pipeline errors onto API errors. Errors it does not
// recognise are returned unchanged.
func ToAPIError(err error) error {
	if err == nil {
		return nil
	}

	var catErr *InvalidCategoryError
	switch {
	case errors.As(err, &catErr):
		return apierrors.InvalidCategory(catErr.Category, catErr.Allowed)
	case errors.Is(err, domain.ErrInvalidCategory):
		return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidCategory, err.Error())
	case errors.Is(err, domain.ErrInvalidDimension):
		return apierrors.ErrValidation("dimension", err.Error())
	case errors.Is(err, domain.ErrDataUnavailable):
		return apierrors.DataUnavailable(err)
	}
	return err
}

// isRequestError reports whether err was caused by the request parameters
func isRequestError(err error) bool {
	return errors.Is(err, domain.ErrInvalidCategory) || errors.Is(err, domain.ErrInvalidDimension)
}
