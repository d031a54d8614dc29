package llmjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"stockscore/pkg/errors"
)

const excerptLimit = 500

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names in violation paths.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})
	return v
}

// ParseError reports text that did not contain parseable JSON.
type ParseError struct {
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from model response: %v; raw text (first %d chars): %s",
		e.Err, excerptLimit, e.Excerpt)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == errors.ErrInvalidInput }

// Violation is one schema failure.
type Violation struct {
	Path    string
	Message string
}

// SchemaError reports a payload that parsed but does not match the schema.
type SchemaError struct {
	Violations []Violation
	// Keys are the top-level keys present in the payload, sorted.
	Keys []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("model response validation failed:")
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  - %s: %s", v.Path, v.Message)
	}
	b.WriteString("\nparsed data keys: ")
	if len(e.Keys) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(e.Keys, ", "))
	}
	return b.String()
}

func (e *SchemaError) Is(target error) bool { return target == errors.ErrInvalidInput }

// Paths returns the violated field paths.
func (e *SchemaError) Paths() []string {
	paths := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		paths[i] = v.Path
	}
	return paths
}

// Decode extracts JSON from text, unmarshals it into T and validates struct
// targets with their `validate` tags.
func Decode[T any](text string) (T, error) {
	var out T

	payload := []byte(Extract(text))

	var generic any
	if err := json.Unmarshal(payload, &generic); err != nil {
		return out, &ParseError{Excerpt: excerpt(text), Err: err}
	}
	keys := topLevelKeys(generic)

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, &SchemaError{Violations: []Violation{typeViolation(err)}, Keys: keys}
	}

	if !isStruct(reflect.TypeOf(out)) {
		return out, nil
	}

	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return out, errors.Wrap(err, "validate payload")
		}
		violations := make([]Violation, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			violations = append(violations, Violation{Path: fieldPath(fe), Message: describe(fe)})
		}
		return out, &SchemaError{Violations: violations, Keys: keys}
	}

	return out, nil
}

func isStruct(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func typeViolation(err error) Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			path = "(root)"
		}
		return Violation{
			Path:    path,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return Violation{Path: "(root)", Message: err.Error()}
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param())
	}
}

func topLevelKeys(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptLimit]) + "..."
}
