// Package schema implements a minimal, declarative per-resource option
// validator covering required fields, recognized-key rejection, and
// primitive type checking, with state-aware pre/post-boot schema
// selection.
package schema

import "fmt"

// FieldType enumerates the primitive types a resource field may declare.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeNonNegInt
	TypePosInt
	TypeStringList
	TypeOpaque
)

// Field declares one option-bag key: whether it is required, and its
// expected primitive type.
type Field struct {
	Name     string
	Required bool
	Type     FieldType
}

// Schema is the full field set accepted for one resource in one boot
// window (pre-boot or post-boot).
type Schema struct {
	Fields []Field
}

// Resource bundles a resource's pre-boot and post-boot schemas. An empty
// Post schema means the resource is pre-boot-only.
type Resource struct {
	Pre  Schema
	Post Schema
}

func (s Schema) byName() map[string]Field {
	m := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		m[f.Name] = f
	}
	return m
}

// PreBootOnly reports whether this resource accepts no post-boot
// mutations at all.
func (r Resource) PreBootOnly() bool {
	return len(r.Post.Fields) == 0
}

// ValidationError names the offending field and the reason validation
// failed. It implements error and is the concrete shape behind the
// InvalidOption error kind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Bag is a caller-supplied option bag, as loosely typed key/value pairs
// (the shape a configure/add call is given before it is typed into a
// concrete fcapi struct).
type Bag map[string]interface{}

// Validate checks bag against schema: every required field present,
// every supplied key recognized, every supplied value type-compatible.
// isCreate additionally enforces "required" for pre-boot schemas only
// (post-boot patches are partial by definition and never re-check
// required-ness of fields absent from the patch).
func Validate(bag Bag, s Schema, isCreate bool) error {
	fields := s.byName()

	for key := range bag {
		if _, ok := fields[key]; !ok {
			return &ValidationError{Field: key, Reason: "unrecognized option"}
		}
	}

	if isCreate {
		for _, f := range s.Fields {
			if !f.Required {
				continue
			}
			if _, present := bag[f.Name]; !present {
				return &ValidationError{Field: f.Name, Reason: "required field missing"}
			}
		}
	}

	for key, val := range bag {
		f := fields[key]
		if err := checkType(f, val); err != nil {
			return err
		}
	}

	return nil
}

func checkType(f Field, val interface{}) error {
	switch f.Type {
	case TypeString:
		if _, ok := val.(string); !ok {
			return &ValidationError{Field: f.Name, Reason: "expected string"}
		}
	case TypeBool:
		if _, ok := val.(bool); !ok {
			return &ValidationError{Field: f.Name, Reason: "expected bool"}
		}
	case TypeNonNegInt:
		n, ok := asInt(val)
		if !ok || n < 0 {
			return &ValidationError{Field: f.Name, Reason: "expected non-negative integer"}
		}
	case TypePosInt:
		n, ok := asInt(val)
		if !ok || n <= 0 {
			return &ValidationError{Field: f.Name, Reason: "expected positive integer"}
		}
	case TypeStringList:
		if _, ok := val.([]string); !ok {
			return &ValidationError{Field: f.Name, Reason: "expected string list"}
		}
	case TypeOpaque:
		// no constraint: opaque fields (cpu_config modifiers, mmds data)
		// are accepted as-is.
	}
	return nil
}

func asInt(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}
