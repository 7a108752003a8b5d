package enum

import (
	"github.com/go-playground/validator/v10"
)

type validatable interface {
	IsValid() bool
}

// ValidateEnum backs the custom `enum` validation tag. Fields using the tag
// must be one of the enum types declared in this package.
func ValidateEnum(fl validator.FieldLevel) bool {
	if v, ok := fl.Field().Interface().(validatable); ok {
		return v.IsValid()
	}

	switch fl.Field().String() {
	case "":
		return false
	default:
		value := fl.Field().String()
		if EnvEnum(value).IsValid() {
			return true
		}
		if KeyStatusEnum(value).IsValid() {
			return true
		}
		return PayOptionEnum(value).IsValid()
	}
}
