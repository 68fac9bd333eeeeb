// Package fieldwise defines the shared types for the field extraction core.
//
// The core resolves form field descriptors against pre-extracted document
// text using domain knowledge: a retrieval cascade picks a value per field,
// a field mapper ranks candidate source documents, and a validation engine
// checks the resolved form. Callers (an HTTP layer, batch jobs) own document
// extraction and persistence; everything here operates on in-memory data.
package fieldwise

import (
	"strings"
	"time"
)

// Document is one unit of pre-extracted source text plus metadata.
// Documents are immutable once handed to the core.
type Document struct {
	ID       string     `yaml:"id" json:"id"`
	Content  string     `yaml:"content" json:"content"`
	Category string     `yaml:"category,omitempty" json:"category,omitempty"`
	Section  string     `yaml:"section,omitempty" json:"section,omitempty"`
	Source   string     `yaml:"source,omitempty" json:"source,omitempty"`
	Date     *time.Time `yaml:"date,omitempty" json:"date,omitempty"`
}

// Field describes one form field to resolve. The core never invents fields;
// descriptors always come from the caller.
type Field struct {
	Name string `yaml:"name" json:"name"`
	// Category is the caller-declared category (party, financial, temporal, ...).
	// Empty means uncategorized; components fall back to domain keyword patterns.
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	// Context is optional surrounding text from the form, used to sharpen
	// lexical matching.
	Context string `yaml:"context,omitempty" json:"context,omitempty"`
}

// Query returns the search text for the field: name plus context.
func (f Field) Query() string {
	if strings.TrimSpace(f.Context) == "" {
		return f.Name
	}
	return f.Name + " " + f.Context
}

// Severity tags a validation outcome with its criticality.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL" // must pass; blocks submission by caller convention
	SeverityWarning  Severity = "WARNING"  // should pass
	SeverityInfo     Severity = "INFO"     // informational
	SeverityOptional Severity = "OPTIONAL" // nice to have
)

// Valid reports whether s is one of the defined severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo, SeverityOptional:
		return true
	}
	return false
}
