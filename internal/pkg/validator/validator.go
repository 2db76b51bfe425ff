package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/estate-geo-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// record_kind - один из известных типов записей (listing, school, poi)
	_ = validate.RegisterValidation("record_kind", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseRecordKind(fl.Field().String())
		return ok
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}
