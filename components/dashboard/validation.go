package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SettingsValidator validates descriptor settings against their kind's schema.
type SettingsValidator interface {
	Validate(def KindDefinition, settings map[string]any) error
}

// SettingsError reports the first settings value a kind schema rejected.
// Pointer is the JSON pointer of that value inside settings, empty when the
// settings object itself is at fault.
type SettingsError struct {
	Kind    string
	Pointer string
	Message string
	Err     error
}

func (e *SettingsError) Error() string {
	at := e.Pointer
	if at == "" {
		at = "/"
	}
	return fmt.Sprintf("dashboard: %s settings invalid at %s: %s", e.Kind, at, e.Message)
}

func (e *SettingsError) Unwrap() error {
	return e.Err
}

// SettingsPointer returns the JSON pointer carried by a SettingsError in err's
// chain, if any.
func SettingsPointer(err error) (string, bool) {
	var serr *SettingsError
	if !errors.As(err, &serr) {
		return "", false
	}
	return serr.Pointer, true
}

// JSONSchemaValidator compiles one schema per kind on first use and checks
// normalized settings against it.
type JSONSchemaValidator struct {
	mu    sync.RWMutex
	kinds map[string]*jsonschema.Schema
}

func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{kinds: make(map[string]*jsonschema.Schema)}
}

// Validate returns a *SettingsError when settings break the kind schema.
// Kinds without a schema accept anything.
func (v *JSONSchemaValidator) Validate(def KindDefinition, settings map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.compile(def)
	if err != nil {
		return err
	}
	doc, err := normalizeSettings(settings)
	if err != nil {
		return fmt.Errorf("dashboard: normalize %s settings: %w", def.Code, err)
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("dashboard: validate %s settings: %w", def.Code, err)
	}
	leaf := firstLeaf(verr)
	return &SettingsError{
		Kind:    def.Code,
		Pointer: leaf.InstanceLocation,
		Message: leaf.Message,
		Err:     err,
	}
}

// normalizeSettings round-trips settings through JSON so Go numeric and slice
// types reach the validator as float64 and []any.
func normalizeSettings(settings map[string]any) (any, error) {
	if settings == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// firstLeaf descends the cause tree to the innermost failure, which points at
// the offending value rather than the root object.
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func (v *JSONSchemaValidator) compile(def KindDefinition) (*jsonschema.Schema, error) {
	key := kindKey(def.Code)
	v.mu.RLock()
	schema, ok := v.kinds[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal %s schema: %w", def.Code, err)
	}
	name := key + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("dashboard: load %s schema: %w", def.Code, err)
	}
	schema, err = compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile %s schema: %w", def.Code, err)
	}

	v.mu.Lock()
	if cached, ok := v.kinds[key]; ok {
		schema = cached
	} else {
		v.kinds[key] = schema
	}
	v.mu.Unlock()
	return schema, nil
}
