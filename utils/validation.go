package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// upiPattern matches VPAs such as name.surname@okbank.
var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z][a-zA-Z0-9]{1,64}$`)

var lettersPattern = regexp.MustCompile(`^[A-Za-z\s]+$`)

func init() {
	_ = validate.RegisterValidation("upi", func(fl validator.FieldLevel) bool {
		return IsValidUPI(fl.Field().String())
	})
	_ = validate.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return lettersPattern.MatchString(fl.Field().String())
	})
}

func IsValidUPI(id string) bool {
	return upiPattern.MatchString(strings.TrimSpace(id))
}

// ValidateStruct runs struct tag validation and flattens the first failure
// into a readable message.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s failed on the '%s' rule", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}

// ValidateVar checks a single value against a tag expression and returns the
// failed rule.
func ValidateVar(value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("value failed on the '%s' rule", verrs[0].Tag())
	}
	return err
}
