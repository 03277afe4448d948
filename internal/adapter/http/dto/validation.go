package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	// Report json names instead of Go field names.
	vld.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return value.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	if err := vld.RegisterValidation("entry_type", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseEntryType(fl.Field().String())
		return err == nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'entry_type': %w", err)
	}

	return vld, nil
}

// Validate checks payload against its validate tags and returns a
// *domain.ValidationError naming the first failing field.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return errValidate
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err)
	}

	fe := fieldErrs[0]
	return domain.NewValidationError(fe.Field(), fieldError(fe))
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return errors.New("field is required")
	case "max":
		return fmt.Errorf("must be at most %s characters", fe.Param())
	case "positive_decimal":
		return domain.ErrInvalidAmount
	case "entry_type":
		return domain.ErrInvalidEntryType
	default:
		return fmt.Errorf("failed on '%s'", fe.Tag())
	}
}
