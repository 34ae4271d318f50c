// Package validate checks raw request payloads against a field schema and
// normalizes them into typed values.
//
// Create requires every field marked RequiredOnCreate. Update is a partial
// update: a field that is absent, null, an empty string, or an integer zero
// counts as not supplied and is dropped, while a boolean false is kept so a
// flag can be cleared. Zero-like values other than false therefore cannot be
// written through an update.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/usersvc/apiserver/internal/schema"
)

// Operation selects the rule set applied by Validate.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
)

func (op Operation) String() string {
	if op == OpUpdate {
		return "update"
	}
	return "create"
}

// Payload maps field names to normalized values: string, int64 or bool.
type Payload map[string]any

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the full list of validation failures for one payload.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate applies the per-field rules of s to raw. On failure the returned
// error is an Errors value holding every failing field in schema order.
func Validate(s *schema.Schema, op Operation, raw map[string]any) (Payload, error) {
	payload := make(Payload)
	var errs Errors

	for _, field := range s.Fields() {
		value, present := raw[field.Name]
		if !present || value == nil {
			if op == OpCreate && field.RequiredOnCreate {
				errs = append(errs, FieldError{Field: field.Name, Message: field.Name + " is required"})
			}
			continue
		}
		if op == OpUpdate && isBlankString(value) {
			continue
		}

		normalized, msg := checkField(field, value)
		if msg != "" {
			errs = append(errs, FieldError{Field: field.Name, Message: msg})
			continue
		}
		if op == OpUpdate && field.Kind == schema.KindInteger && normalized.(int64) == 0 {
			continue
		}
		payload[field.Name] = normalized
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return payload, nil
}

func isBlankString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// checkField returns the normalized value, or a non-empty message when value
// violates the field's rule.
func checkField(field schema.Field, value any) (any, string) {
	var normalized any
	switch field.Kind {
	case schema.KindString:
		s, ok := value.(string)
		if !ok {
			return nil, field.Name + " must be a string"
		}
		normalized = strings.TrimSpace(s)

	case schema.KindInteger:
		n, ok := toInteger(value)
		if !ok {
			return nil, field.Name + " must be an integer"
		}
		normalized = n

	case schema.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, field.Name + " must be a boolean"
		}
		normalized = b

	default:
		return nil, field.Name + " has an unsupported type"
	}

	if tag := constraintTag(field); tag != "" {
		if err := checker.Var(normalized, tag); err != nil {
			return nil, constraintMessage(field, err)
		}
	}
	return normalized, ""
}

var checker = validator.New()

// constraintTag renders the field's constraints as validator tags.
func constraintTag(field schema.Field) string {
	var tags []string
	switch field.Kind {
	case schema.KindString:
		tags = append(tags, "required")
	case schema.KindInteger:
		if field.Min != nil {
			tags = append(tags, "min="+strconv.FormatInt(*field.Min, 10))
		}
		if field.Max != nil {
			tags = append(tags, "max="+strconv.FormatInt(*field.Max, 10))
		}
	}
	return strings.Join(tags, ",")
}

func constraintMessage(field schema.Field, err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return field.Name + " is invalid"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return field.Name + " must not be empty"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field.Name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field.Name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field.Name, fe.Tag())
	}
}

// number matches json.Number from both encoding/json and goccy/go-json.
type number interface {
	Int64() (int64, error)
	String() string
}

func toInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		return wholeFloat(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return wholeFloat(v)
	case float32:
		return wholeFloat(float64(v))
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
