package services

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// objectid accepts any hex ObjectID the driver parses, in either case.
	_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct runs the struct's validate tags and turns the first failure
// into a validation error naming the field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Kind: ErrValidation, Message: "invalid input", Cause: err}
	}

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "objectid" {
			return validationError("%s is not a valid id", fe.Field())
		}
		names = append(names, fe.Field())
	}
	return validationError("%s required", strings.Join(names, ", "))
}

// ParseID parses a hex ObjectID coming from a path or query parameter.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validationError("invalid id %q", hex)
	}
	return id, nil
}

// Price accepts a JSON number or a numeric string, e.g. 100 or "100".
type Price struct {
	Value float64
	Set   bool
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = Price{}
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*p = Price{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("price must be a number, got %s", b)
	}
	*p = Price{Value: v, Set: true}
	return nil
}
