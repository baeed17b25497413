package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator devuelve la instancia compartida configurada con nombres de campo JSON y alias propios.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=8,max=72") // bcrypt trunca a 72 bytes
		v.RegisterAlias("member_role", "oneof=admin member")
		validate = v
	})
	return validate
}

// Struct valida s con las etiquetas `validate`.
func Struct(s any) error {
	return Validator().Struct(s)
}

// ToDetails convierte errores de validación o de JSON en un mapa campo -> mensaje para error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "JSON inválido"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "payload inválido"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un email válido"
	case "uuid", "uuid4":
		return "debe ser un UUID válido"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "debe ser al menos " + param
		}
		return "debe tener al menos " + param + " caracteres"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "debe ser como máximo " + param
		}
		return "debe tener como máximo " + param + " caracteres"
	case "gte":
		return "debe ser mayor o igual a " + param
	case "gt":
		return "debe ser mayor que " + param
	case "oneof":
		return "debe ser uno de: " + strings.Join(strings.Fields(param), ", ")
	case "pwd":
		return "debe tener entre 8 y 72 caracteres"
	case "member_role":
		return "debe ser admin o member"
	default:
		if param != "" {
			return fmt.Sprintf("falla la validación '%s' (%s)", fe.Tag(), param)
		}
		return fmt.Sprintf("falla la validación '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

var lower = cases.Lower(language.Und)

// NormalizeEmail recorta espacios y pasa a minúsculas. Los emails se comparan siempre normalizados.
func NormalizeEmail(email string) string {
	return lower.String(strings.TrimSpace(email))
}
