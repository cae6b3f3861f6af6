package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"jobboard_backend/internal/models"
)

// registerCustomRules registers the enum validations used by job and
// user DTOs. Empty values pass so 'required' stays in charge of presence.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-contract-type", validateContractType)
	mustRegister("is-work-type", validateWorkType)
	mustRegister("is-user-role", validateUserRole)
}

func validateContractType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ValidContractType(value)
}

func validateWorkType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ValidWorkType(value)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.UserRole(value) {
	case models.UserRoleUser, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}
