package validation

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-freelance-backend/internal/domain"
)

// Letters, digits, spaces and common punctuation found in company and person names
var nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'’/&(),-]+$`)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("user_role", UserRole)
	_ = v.RegisterValidation("candidature_status", CandidatureStatus)
}

// ValidName rejects symbols outside the usual name punctuation
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// NoEmoji rejects emoji and other pictographic symbols
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 || unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func UserRole(fl validator.FieldLevel) bool {
	_, err := domain.ParseRole(fl.Field().String())
	return err == nil
}

func CandidatureStatus(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := domain.ParseCandidatureStatus(val)
	return err == nil
}
