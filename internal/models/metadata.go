package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Metadata is the structured front matter attached to an onboarding document.
// Unknown keys are rejected so that stored metadata is never guessed at.
type Metadata struct {
	Title         string   `yaml:"title" json:"title,omitempty" validate:"omitempty,max=200"`
	BusinessRole  string   `yaml:"business_role" json:"business_role,omitempty" validate:"omitempty,max=100"`
	Department    string   `yaml:"department" json:"department,omitempty" validate:"omitempty,max=100"`
	Module        string   `yaml:"module" json:"module,omitempty" validate:"omitempty,max=100"` // Learning module, e.g. company_policies
	Tags          []string `yaml:"tags" json:"tags,omitempty" validate:"omitempty,max=32,dive,required,max=50"`
	Owner         string   `yaml:"owner" json:"owner,omitempty" validate:"omitempty,email"`
	EffectiveDate string   `yaml:"effective_date" json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// Pages is filled in by PDF extraction, never by front matter
	Pages int `yaml:"-" json:"pages,omitempty"`
}

// MetadataError reports metadata that could not be decoded or failed validation
type MetadataError struct {
	Source string
	Err    error
}

func (e *MetadataError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid metadata in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("invalid metadata: %v", e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Validate validates the metadata using go-playground/validator
func (m *Metadata) Validate() error {
	return validate.Struct(m)
}

// DecodeMetadata strictly decodes YAML metadata. Empty input yields zero Metadata.
// Unknown fields, type mismatches and validation failures all return a *MetadataError.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return Metadata{}, nil
		}
		return Metadata{}, &MetadataError{Err: err}
	}

	if err := m.Validate(); err != nil {
		return Metadata{}, &MetadataError{Err: err}
	}
	return m, nil
}
