package schemafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mkch/bitrec/schema"
)

// Document is the decoded form of a schema file.
type Document struct {
	ByteOrder string              `yaml:"byte_order,omitempty" json:"byte_order,omitempty"`
	BitOrder  string              `yaml:"bit_order,omitempty" json:"bit_order,omitempty"`
	Types     map[string]*TypeDef `yaml:"types" json:"types"`
}

// TypeDef declares one record type.
type TypeDef struct {
	ByteOrder string      `yaml:"byte_order,omitempty" json:"byte_order,omitempty"`
	BitOrder  string      `yaml:"bit_order,omitempty" json:"bit_order,omitempty"`
	Fields    []*FieldDef `yaml:"fields" json:"fields"`
}

// FieldDef declares an integer field, a group (Type) or a list (Repeat).
type FieldDef struct {
	Name    string     `yaml:"name,omitempty" json:"name,omitempty"`
	Spec    string     `yaml:"spec,omitempty" json:"spec,omitempty"`
	When    string     `yaml:"when,omitempty" json:"when,omitempty"`
	Default *int64     `yaml:"default,omitempty" json:"default,omitempty"`
	Value   string     `yaml:"value,omitempty" json:"value,omitempty"`
	Update  string     `yaml:"update,omitempty" json:"update,omitempty"`
	Type    string     `yaml:"type,omitempty" json:"type,omitempty"`
	Repeat  *RepeatDef `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// RepeatDef declares how a list is laid out and where it ends.
type RepeatDef struct {
	Type         string           `yaml:"type" json:"type"`
	Until        string           `yaml:"until,omitempty" json:"until,omitempty"`
	Count        string           `yaml:"count,omitempty" json:"count,omitempty"`
	Max          int              `yaml:"max,omitempty" json:"max,omitempty"`
	Continuation *ContinuationDef `yaml:"continuation,omitempty" json:"continuation,omitempty"`
}

// ContinuationDef names the element field marking whether more elements
// follow.
type ContinuationDef struct {
	Field string `yaml:"field" json:"field"`
	More  uint64 `yaml:"more" json:"more"`
	Last  uint64 `yaml:"last" json:"last"`
}

// Format is a document syntax.
type Format int

const (
	YAML Format = iota
	// JSON also accepts comments and trailing commas.
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "yaml"
}

// FormatOf guesses the format from a file name: .json and .jsonc are
// JSON, everything else YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return JSON
	}
	return YAML
}

// ErrSyntax is wrapped by errors about the document text itself.
var ErrSyntax = errors.New("schema document syntax")

// Unmarshal decodes a document. Unknown keys are errors.
func Unmarshal(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case JSON:
		d := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		d.DisallowUnknownFields()
		if err := d.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
	default:
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		if err := d.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
	}
	if len(doc.Types) == 0 {
		return nil, fmt.Errorf("%w: no types", ErrSyntax)
	}
	return &doc, nil
}

// Parse decodes and compiles a document.
func Parse(data []byte, format Format) (*Set, error) {
	doc, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// Error reports a document that does not describe valid schemas. It
// wraps schema.ErrMalformed.
type Error struct {
	Type  string
	Field string
	msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("type %s: %s", e.Type, e.msg)
	}
	return fmt.Sprintf("type %s, field %s: %s", e.Type, e.Field, e.msg)
}

func (e *Error) Unwrap() error {
	return schema.ErrMalformed
}

func errorf(typ, field string, format string, a ...interface{}) *Error {
	return &Error{Type: typ, Field: field, msg: fmt.Sprintf(format, a...)}
}
