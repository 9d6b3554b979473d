package http

import (
	"errors"
	"reflect"
	"strings"

	"golang-deal-scout/internal/entity"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the pipeline's custom tags registered.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("stage", stageValidator)
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// stageValidator accepts L0 to L5.
func stageValidator(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return entity.PipelineStage(s).Valid()
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// validationFields flattens validator errors into field -> problem.
func validationFields(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = problem(fe)
	}
	return fields, true
}

func problem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "stage":
		return "must be one of L0, L1, L2, L3, L4, L5"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "max":
		return "must satisfy " + fe.Tag() + "=" + fe.Param()
	case "uuid":
		return "must be a UUID"
	default:
		if fe.Tag() == "stage|eq=none" {
			return "must be a stage or none"
		}
		return "failed " + fe.Tag() + " check"
	}
}
