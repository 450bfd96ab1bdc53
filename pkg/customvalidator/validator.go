// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует кастомные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("dateformat", isISODate); err != nil {
		return err
	}
	return nil
}

// isISODate проверяет строку (или указатель на строку) на формат YYYY-MM-DD.
// Пустое значение пропускаем: обязательность задается отдельным правилом.
func isISODate(fl validator.FieldLevel) bool {
	field := fl.Field()

	var value string
	switch field.Kind() {
	case reflect.String:
		value = field.String()
	case reflect.Ptr:
		if field.IsNil() {
			return true
		}
		value = field.Elem().String()
	default:
		return false
	}

	if value == "" {
		return true
	}

	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
