package utils

import (
	"errors"
	"medbridge-service/internal/app/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("datatype", validateDataType)
	validate.RegisterValidation("role", validateRole)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateDataType(fl validator.FieldLevel) bool {
	return models.DataType(fl.Field().String()).IsValid()
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).IsValid()
}

func ValidateUrlParamID(param string) error {
	if param == "" {
		return errors.New("parameter is missing from url path")
	}

	_, err := uuid.Parse(param)
	return err
}
