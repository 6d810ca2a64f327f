package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMediaTypeNotAllowed rejects uploads outside the configured allow-list
// or whose content does not match their declared type.
var ErrMediaTypeNotAllowed = errors.New("media type not allowed")

// MediaTypeValidator checks a declared media type against policy.
type MediaTypeValidator interface {
	Validate(mediaType string) error
}

// MediaTypeIntegrityValidator checks that the file content actually is what
// the declared media type claims, based on the leading bytes.
type MediaTypeIntegrityValidator interface {
	Validate(mediaType string, header []byte) error
}

// AllowListValidator permits only the configured media types.
type AllowListValidator struct {
	allowed map[string]struct{}
}

func NewAllowListValidator(mediaTypes ...string) *AllowListValidator {
	set := make(map[string]struct{}, len(mediaTypes))
	for _, mt := range mediaTypes {
		set[mt] = struct{}{}
	}
	return &AllowListValidator{allowed: set}
}

// NewImageValidator allows the image types the ingest pipeline can process.
func NewImageValidator() *AllowListValidator {
	return NewAllowListValidator("image/jpeg", "image/png", "image/webp")
}

func (v *AllowListValidator) Validate(mediaType string) error {
	if _, ok := v.allowed[mediaType]; !ok {
		return fmt.Errorf("%q: %w", mediaType, ErrMediaTypeNotAllowed)
	}
	return nil
}

// SniffValidator compares the declared media type against the type detected
// from the content header.
type SniffValidator struct{}

func (SniffValidator) Validate(mediaType string, header []byte) error {
	detected := http.DetectContentType(header)
	if detected != mediaType {
		return fmt.Errorf("declared %q but content looks like %q: %w", mediaType, detected, ErrMediaTypeNotAllowed)
	}
	return nil
}
