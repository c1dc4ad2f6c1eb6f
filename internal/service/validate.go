package service

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	cityPattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	digitPattern = regexp.MustCompile(`^[0-9]+$`)
)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &domain.ValidationError{Field: "company_email", Reason: "invalid email format"}
	}
	return nil
}

func validateMobile(mobile string) error {
	if len(mobile) != 10 || !digitPattern.MatchString(mobile) {
		return &domain.ValidationError{Field: "company_mobile", Reason: "mobile number must be exactly 10 digits"}
	}
	return nil
}

func validateZip(zip string) error {
	if len(zip) != 5 || !digitPattern.MatchString(zip) {
		return &domain.ValidationError{Field: "zip_code", Reason: "zip code must be 5 digits"}
	}
	return nil
}

func validateCity(city string) error {
	if !cityPattern.MatchString(city) {
		return &domain.ValidationError{Field: "city", Reason: "city must contain only letters"}
	}
	return nil
}

func validateLogoName(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "jpg", "jpeg", "png":
		return nil
	}
	return &domain.ValidationError{Field: "logo", Reason: "logo must be .jpg, .jpeg, or .png"}
}

// validateProfileFields runs every company field check. An empty logo
// filename means no upload was submitted and the logo check is skipped.
func validateProfileFields(email, mobile, city, zip, logoName string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateMobile(mobile); err != nil {
		return err
	}
	if err := validateZip(zip); err != nil {
		return err
	}
	if err := validateCity(city); err != nil {
		return err
	}
	if logoName != "" {
		return validateLogoName(logoName)
	}
	return nil
}
