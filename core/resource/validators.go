package resource

import (
	"github.com/go-playground/validator/v10"

	"github.com/teayouth/portal/core"
)

var (
	accessLevelTag  = "accesslevel"
	accessLevelText = "invalid access level"
)

func init() {
	_ = core.Validate.RegisterValidation(accessLevelTag, accessLevelValidation)
	core.RegisterCustomTranslation(accessLevelTag, accessLevelText)
}

// accessLevelValidation checks that the provided tag is in AccessLevels.
func accessLevelValidation(fl validator.FieldLevel) bool {
	return AccessLevel(fl.Field().String()).Valid()
}
