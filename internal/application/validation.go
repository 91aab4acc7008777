package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nissmart/dashboard-cli/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Decimals reach the tag functions as their exact text so the validator
	// treats them as scalars rather than nested structs.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if amount, ok := field.Interface().(decimal.Decimal); ok {
			return amount.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("positive_amount", positiveAmount); err != nil {
		panic(err)
	}
}

// positiveAmount reads the decimal itself from the parent struct, so the
// comparison never goes through a float.
func positiveAmount(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}

	field := parent.FieldByName(fl.StructFieldName())
	if !field.IsValid() || !field.CanInterface() {
		return false
	}
	amount, ok := field.Interface().(decimal.Decimal)
	return ok && amount.IsPositive()
}

// PrepareAction trims text fields, fills default descriptions and checks the
// local preconditions of action. Failures are *domain.ValidationError.
func PrepareAction(action domain.Action) (domain.Action, error) {
	var target any
	switch a := action.(type) {
	case domain.CreateUser:
		a.Name = strings.TrimSpace(a.Name)
		a.Email = strings.TrimSpace(a.Email)
		target = &a
	case domain.Deposit:
		a.Description = strings.TrimSpace(a.Description)
		target = &a
	case domain.Transfer:
		a.Description = strings.TrimSpace(a.Description)
		target = &a
	case domain.Withdraw:
		a.Description = strings.TrimSpace(a.Description)
		target = &a
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unsupported action %T", action)}
	}

	if err := defaults.Set(target); err != nil {
		return nil, fmt.Errorf("apply action defaults: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return nil, toValidationError(err)
	}

	return reflect.ValueOf(target).Elem().Interface().(domain.Action), nil
}

func toValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return &domain.ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return &domain.ValidationError{Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "notblank", "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "positive_amount":
		return fmt.Sprintf("%s must be greater than 0", field)
	case "gt":
		if fe.Kind() == reflect.Int64 {
			return fmt.Sprintf("%s must be selected", field)
		}
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func fieldLabel(field string) string {
	switch field {
	case "UserID":
		return "User"
	case "From":
		return "Source user"
	case "To":
		return "Destination user"
	default:
		return field
	}
}
