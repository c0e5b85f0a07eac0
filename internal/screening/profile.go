package screening

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	emailTag = "screening_email"
	phoneTag = "screening_phone"
)

var (
	// Word characters, digits and spaces are Unicode aware, not ASCII only.
	emailPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_.-]+@[\p{L}\p{M}\p{N}_.-]+\.[\p{L}\p{M}\p{N}_]+$`)
	phonePattern = regexp.MustCompile(`^[\p{Nd}+\-\s\v\p{Z}]+$`)
)

// Profile is the candidate data collected before the screening starts.
type Profile struct {
	FullName         string `json:"full_name" yaml:"full_name" validate:"required"`
	Email            string `json:"email" yaml:"email" validate:"required,screening_email"`
	Phone            string `json:"phone" yaml:"phone" validate:"required,screening_phone"`
	YearsExperience  string `json:"years_experience" yaml:"years_experience" validate:"required"`
	DesiredPositions string `json:"desired_positions" yaml:"desired_positions" validate:"required"`
	Location         string `json:"location" yaml:"location" validate:"required"`
	TechStack        string `json:"tech_stack" yaml:"tech_stack" validate:"required"`
}

// Normalized returns a copy with every field trimmed.
func (p Profile) Normalized() Profile {
	return Profile{
		FullName:         strings.TrimSpace(p.FullName),
		Email:            strings.TrimSpace(p.Email),
		Phone:            strings.TrimSpace(p.Phone),
		YearsExperience:  strings.TrimSpace(p.YearsExperience),
		DesiredPositions: strings.TrimSpace(p.DesiredPositions),
		Location:         strings.TrimSpace(p.Location),
		TechStack:        strings.TrimSpace(p.TechStack),
	}
}

// IsZero reports whether no field is set.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks the trimmed profile. Missing fields are reported first, then
// the email shape, then the phone shape.
func (p Profile) Validate() error {
	err := profileValidator().Struct(p.Normalized())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating profile: %w", err)
	}

	var missing []string
	var email, phone bool
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case emailTag:
			email = true
		case phoneTag:
			phone = true
		}
	}

	switch {
	case len(missing) > 0:
		return &ValidationError{Kind: MissingFields, Fields: missing}
	case email:
		return &ValidationError{Kind: InvalidEmail, Fields: []string{"email"}}
	case phone:
		return &ValidationError{Kind: InvalidPhone, Fields: []string{"phone"}}
	default:
		return fmt.Errorf("validating profile: %w", err)
	}
}
