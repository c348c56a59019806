package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	imageTypeTag  = "image_type"
	imageTypeText = "{0} must be a jpeg, png, gif or webp image"
	requiredText  = "{0} is required"
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FieldError is one failed field, named by its json tag.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	v := validator.New()
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Report json names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(imageTypeTag, func(fl validator.FieldLevel) bool {
		return imageTypes[strings.ToLower(fl.Field().String())]
	})
	registerTranslation(v, translator, imageTypeTag, imageTypeText, false)
	registerTranslation(v, translator, "required", requiredText, true)

	return &Validator{validate: v, translator: translator}
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string, override bool) {
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns its failures; nil means valid.
func (v *Validator) Struct(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}

// Var validates a single value against tag.
func (v *Validator) Var(field string, value any, tag string) []FieldError {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: field, Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := strings.TrimSpace(fe.Translate(v.translator))
		out = append(out, FieldError{Field: field, Message: field + " " + msg})
	}
	return out
}
