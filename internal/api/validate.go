package api

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/mnemoflash/internal/config"
	"github.com/vytor/mnemoflash/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// language accepts the codes generation prompts know how to name.
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		_, ok := config.SupportedLanguages[fl.Field().String()]
		return ok
	})
	return v
}

// validateRequest runs struct validation and reports the first failure as
// a VALIDATION_ERROR.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewBadRequestError(err.Error())
	}
	fe := verrs[0]
	return errors.NewValidationError(fieldPath(fe), reason(fe))
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "language":
		return fmt.Sprintf("unsupported language %q", fe.Value())
	case "nefield":
		return "must differ from " + fe.Param()
	case "min":
		return "needs at least " + fe.Param() + " item(s)"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag()
}
