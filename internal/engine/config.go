package engine

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("invalid configuration")

// FieldViolation is one rejected configuration field.
type FieldViolation struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s %s (got %s)", v.Field, v.Reason, v.Value)
}

// ConfigurationError reports every field that failed validation. It is
// returned before any simulation work begins.
type ConfigurationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, strings.Join(parts, "; "))
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// configValidate checks SimulationConfig and Limits struct tags. Field names
// in errors use the json tag.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New(validator.WithRequiredStructEnabled())
	configValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := configValidate.RegisterValidation("finite", validateFinite); err != nil {
		panic(fmt.Sprintf("registering finite validation: %v", err))
	}
}

func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate returns a *ConfigurationError describing every invalid field, or nil.
func (c SimulationConfig) Validate() error {
	return translate(configValidate.Struct(c))
}

// Check returns a *ConfigurationError if c exceeds the limits.
func (l Limits) Check(c SimulationConfig) error {
	var violations []FieldViolation
	if l.MaxPopulation > 0 && c.Population > l.MaxPopulation {
		violations = append(violations, FieldViolation{
			Field: "population", Value: strconv.Itoa(c.Population), Reason: fmt.Sprintf("must be <= %d", l.MaxPopulation),
		})
	}
	if l.MaxSteps > 0 && c.Steps > l.MaxSteps {
		violations = append(violations, FieldViolation{
			Field: "steps", Value: strconv.Itoa(c.Steps), Reason: fmt.Sprintf("must be <= %d", l.MaxSteps),
		})
	}
	if len(violations) > 0 {
		return &ConfigurationError{Violations: violations}
	}
	return nil
}

// translate converts validator errors into a *ConfigurationError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating configuration: %w", err)
	}
	ce := &ConfigurationError{Violations: make([]FieldViolation, 0, len(verrs))}
	for _, fe := range verrs {
		ce.Violations = append(ce.Violations, FieldViolation{
			Field:  fe.Field(),
			Value:  fmt.Sprint(fe.Value()),
			Reason: reason(fe),
		})
	}
	return ce
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lt":
		return "must be < " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "finite":
		return "must be finite"
	default:
		return "failed " + fe.Tag()
	}
}
