package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/crm-service/internal/domain"
)

var countryCodePattern = regexp.MustCompile(`^(\+?\d{1,3}|\d{1,4})$`)

// Messages for specific field/tag pairs. Everything else falls back to tag-level wording.
var fieldMessages = map[string]string{
	"username.min":                  "Invalid username length",
	"password.min":                  "password is too short",
	"password.max":                  "password is too long",
	"otp.len":                       "Invalid OTP",
	"phoneNumber.len":               "Invalid Phone Number",
	"phoneNumber.number":            "Invalid Phone Number",
	"primaryContactNumber.len":      "Invalid Phone Number",
	"primaryContactNumber.number":   "Invalid Phone Number",
	"secondaryContactNumber.len":    "Invalid Phone Number",
	"secondaryContactNumber.number": "Invalid Phone Number",
}

// Validator checks request payloads against their `validate` tags and returns
// client-facing messages.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom tags and cross-field rules used by the request types.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("countrycode", func(fl validator.FieldLevel) bool {
		return countryCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("disposition", func(fl validator.FieldLevel) bool {
		return domain.Disposition(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(signinRules, SigninRequest{})
	v.RegisterStructValidation(updateTeamRules, UpdateTeamRequest{})
	v.RegisterStructValidation(createContactRules, CreateContactRequest{})
	v.RegisterStructValidation(updateContactRules, UpdateContactRequest{})
	return &Validator{validate: v}
}

// Validate returns nil when req is valid, otherwise one message per violation.
func (v *Validator) Validate(req any) []string {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{"invalid payload"}
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}
	return messages
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required", "min":
		return fe.Field() + " should not be empty"
	case "email":
		return fe.Field() + " must be an email"
	case "countrycode":
		return "Invalid country code"
	case "disposition":
		return "invalid disposition"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "identifier":
		return "username or email is required"
	case "exclusive":
		return "provide either username or email, not both"
	case "anyof":
		return "name or description is required"
	case "required_with":
		return fmt.Sprintf("%s is required with %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

func signinRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(SigninRequest)
	switch {
	case r.Username == "" && r.Email == "":
		sl.ReportError(r.Username, "username", "Username", "identifier", "")
	case r.Username != "" && r.Email != "":
		sl.ReportError(r.Username, "username", "Username", "exclusive", "")
	}
}

func updateTeamRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(UpdateTeamRequest)
	if r.Name == nil && r.Description == nil {
		sl.ReportError(r.Name, "name", "Name", "anyof", "")
	}
}

func createContactRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(CreateContactRequest)
	secondaryPhoneRules(sl, r.SecondaryCountryCode, r.SecondaryContactNumber)
}

func updateContactRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(UpdateContactRequest)
	secondaryPhoneRules(sl, r.SecondaryCountryCode, r.SecondaryContactNumber)
}

// The secondary country code and number travel together.
func secondaryPhoneRules(sl validator.StructLevel, countryCode, number string) {
	switch {
	case number != "" && countryCode == "":
		sl.ReportError(countryCode, "secondaryCountryCode", "SecondaryCountryCode", "countrycode", "")
	case countryCode != "" && number == "":
		sl.ReportError(number, "secondaryContactNumber", "SecondaryContactNumber", "required_with", "secondaryCountryCode")
	}
}
