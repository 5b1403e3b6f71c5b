package main

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/MrEthical07/goGuard/permission"
)

const (
	notBlankTag   = "notblank"
	portalRoleTag = "portal_role"
)

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Errors name JSON fields, not Go fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(portalRoleTag, portalRoleValidation)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, portalRoleTag} {
		_ = v.RegisterTranslation(tag, trans, noop, translateCustom)
	}
	return v, trans
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case portalRoleTag:
		return fe.Field() + " must be one of admin, lecturer or student"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func portalRoleValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	r, ok := permission.ParseRole(s)
	return ok && r.HasPortal()
}

// fieldErrors maps JSON field names to readable messages. It returns nil when
// err is not a validation failure.
func fieldErrors(err error, trans ut.Translator) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(trans)
	}
	return out
}
