package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Email validation pattern, matched against the lowercased address
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Lookup codes: letters, digits, underscore and dash
	LookupCodePattern = `^[A-Za-z0-9_\-]{1,32}$`

	// Phone numbers: optional leading +, then 6 to 20 digits, spaces or dashes
	PhonePattern = `^\+?[0-9][0-9 \-]{5,19}$`

	ISO2Pattern = `^[A-Za-z]{2}$`
	ISO3Pattern = `^[A-Za-z]{3}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	LookupCode *regexp.Regexp
	Phone      *regexp.Regexp
	ISO2       *regexp.Regexp
	ISO3       *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	LookupCode: regexp.MustCompile(LookupCodePattern),
	Phone:      regexp.MustCompile(PhonePattern),
	ISO2:       regexp.MustCompile(ISO2Pattern),
	ISO3:       regexp.MustCompile(ISO3Pattern),
}

// IsEmail reports whether s looks like an email address
func IsEmail(s string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// IsPhone reports whether s is an acceptable phone number
func IsPhone(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return CompiledPatterns.Phone.MatchString(s) && digits >= 6
}

func patternRule(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// RegisterCustomValidators adds the project rules to v
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"iso2":       patternRule(CompiledPatterns.ISO2),
		"iso3":       patternRule(CompiledPatterns.ISO3),
		"lookupcode": patternRule(CompiledPatterns.LookupCode),
		"phone": func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGinValidators installs the custom rules into gin's binding validator
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterCustomValidators(v)
}

var formats = newFormatValidator()

func newFormatValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := RegisterCustomValidators(v); err != nil {
		panic(err)
	}
	return v
}

// CheckFormat runs the validate tags of s and reports the first failing field
func CheckFormat(s interface{}) error {
	err := formats.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(Describe(verrs[0]))
	}
	return err
}

// Describe renders the project rules as messages. Other tags get a generic one.
func Describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "iso2":
		return "ISO 2 code must be exactly 2 letters."
	case "iso3":
		return "ISO 3 code must be exactly 3 letters."
	case "lookupcode":
		return fmt.Sprintf("%s may only contain letters, digits, '_' and '-' (at most 32 characters)", fe.Field())
	case "phone":
		return fe.Field() + " must be a valid phone number"
	default:
		return fe.Field() + " validation failed: " + fe.Tag()
	}
}
