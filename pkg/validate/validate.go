package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/gigmarket/internal/domain"
)

// BudgetCarrier is implemented by payloads that carry a budget and the
// milestone costs that have to add up to it.
type BudgetCarrier interface {
	BudgetAmount() decimal.Decimal
	MilestoneCosts() []decimal.Decimal
}

type Validator struct {
	v *validator.Validate
}

// New returns a validator with the money and notblank tags registered. Types
// passed in budgeted get the cross-field budget rule.
func New(budgeted ...BudgetCarrier) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("money", isMoney); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}

	types := make([]any, len(budgeted))
	for i, b := range budgeted {
		types[i] = b
	}
	if len(types) > 0 {
		v.RegisterStructValidation(budgetRule, types...)
	}

	return &Validator{v: v}
}

// Struct validates s and returns the first failure as *domain.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &domain.ValidationError{Field: fieldPath(fe), Message: message(fe)}
}

func budgetRule(sl validator.StructLevel) {
	carrier, ok := sl.Current().Interface().(BudgetCarrier)
	if !ok {
		return
	}
	err := domain.CheckBudget(carrier.BudgetAmount(), carrier.MilestoneCosts())
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		sl.ReportError(carrier, ve.Field, ve.Field, "budget", ve.Message)
	}
}

// decimalValue lets the string rules see decimals. An absent amount fails
// required like an empty string.
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func isMoney(fl validator.FieldLevel) bool {
	var d decimal.Decimal
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		d = decimal.NewFromFloat(fl.Field().Float())
	case reflect.String:
		parsed, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		d = parsed
	default:
		return false
	}
	return d.IsPositive() && d.Exponent() >= -2
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath turns "CreateContractRequestDTO.milestones[0].cost" into "milestones[0].cost".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	collection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if collection {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if collection {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "money":
		return "must be a positive amount with at most two decimal places"
	case "notblank":
		return "must not be blank"
	case "budget":
		return fe.Param()
	}
	return "is invalid"
}
