package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/volatiletech/null/v8"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	dateTag  = "date_"
	dateText = "invalid date; YYYY-MM-DD expected"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// DateFormat is the wire format of all Period/Attendance/Term dates.
const DateFormat = "2006-01-02"

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Unwrap null.* patch fields so their tags apply to the carried value
	// instead of the wrapper struct; an absent field reads as nil and is
	// skipped by "omitempty".
	validate.RegisterCustomTypeFunc(nullableValue, null.Int{}, null.String{}, null.Bool{})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(dateTag, dateValidation)
	RegisterCustomTranslation(validate, translator, dateTag, dateText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// dateValidation allows "YYYY-MM-DD" strings.
func dateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateFormat, fl.Field().String())
	return err == nil
}

func nullableValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case null.Int:
		if v.Valid {
			return v.Int
		}
	case null.String:
		if v.Valid {
			return v.String
		}
	case null.Bool:
		if v.Valid {
			return v.Bool
		}
	}
	return nil
}

// "omitempty" cannot tell an explicit zero value from an absent null.*
// field, so patch structs check those by hand with the helpers below.

// CheckPositive appends a field error when a present null.Int is below 1.
func CheckPositive(flds []FieldError, field string, v null.Int) []FieldError {
	if v.Valid && v.Int < 1 {
		flds = append(flds, FieldError{Field: field, Error: "must be a positive integer"})
	}
	return flds
}

// CheckDate appends a field error when a present null.String is not a
// "YYYY-MM-DD" date.
func CheckDate(flds []FieldError, field string, v null.String) []FieldError {
	if v.Valid {
		if _, err := time.Parse(DateFormat, v.String); err != nil {
			flds = append(flds, FieldError{Field: field, Error: dateText})
		}
	}
	return flds
}
