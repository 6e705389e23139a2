package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedSnapshot reports a persisted snapshot that cannot be applied.
var ErrMalformedSnapshot = errors.New("dashboard: malformed snapshot")

const snapshotSchemaName = "snapshot.json"

const snapshotSchema = `{
  "type": "object",
  "required": ["version", "layout", "columns"],
  "properties": {
    "version": {"type": "integer", "minimum": 1, "maximum": 1},
    "layout": {"type": "string", "minLength": 1},
    "theme": {"type": "string"},
    "dark_mode": {"type": "boolean"},
    "compact_mode": {"type": "boolean"},
    "saved_at": {"type": "string"},
    "columns": {
      "type": "array",
      "items": {
        "type": ["array", "null"],
        "items": {"type": "string", "minLength": 1}
      }
    }
  }
}`

// JSONSchemaValidator validates snapshots against the persisted document schema.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// ValidateSnapshot checks the document shape and that no widget is placed twice.
func (v *JSONSchemaValidator) ValidateSnapshot(snapshot Snapshot) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("dashboard: marshal snapshot: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize snapshot: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	seen := make(map[string]struct{})
	for _, col := range snapshot.Columns {
		for _, id := range col {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: widget %s placed twice", ErrMalformedSnapshot, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(snapshotSchemaName, strings.NewReader(snapshotSchema)); err != nil {
			v.err = fmt.Errorf("dashboard: load snapshot schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(snapshotSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile snapshot schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
