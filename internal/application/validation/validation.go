// Package validation: validador compartido (go-playground/validator) que traduce los
// errores a domain.ValidationError con nombres de campo JSON.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-manager/internal/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator devuelve la instancia compartida (segura para uso concurrente).
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		// decimal.Decimal se compara como número en gte/lte/min/max.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		instance = v
	})
	return instance
}

// Struct valida s y acumula los fallos en ve (se crea uno si ve es nil).
// Devuelve ve para encadenar comprobaciones manuales.
func Struct(s interface{}, ve *domain.ValidationError) *domain.ValidationError {
	if ve == nil {
		ve = domain.NewValidationError()
	}
	err := Validator().Struct(s)
	if err == nil {
		return ve
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.Add("_", err.Error())
		return ve
	}
	for _, fe := range verrs {
		ve.Add(fieldPath(fe), message(fe))
	}
	return ve
}

// MaxDecimals indica si d tiene a lo sumo places decimales.
func MaxDecimals(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// fieldPath quita el nombre del struct raíz: "State.items[0].unit_price" -> "items[0].unit_price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "url":
		return "URL inválida"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("mínimo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	default:
		return fmt.Sprintf("no cumple la regla %q", fe.Tag())
	}
}
