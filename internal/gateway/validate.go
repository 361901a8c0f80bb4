package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schema pairs a name with a JSON Schema definition.
type schema struct {
	name       string
	definition map[string]any
}

// compiledSchemas caches compiled schemas by name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// validatePayload checks raw JSON against the given schema. A violation
// means the server sent something this client version cannot trust.
func validatePayload(s *schema, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(s)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", s.name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("response does not match %q schema: %w", s.name, err)
	}
	return nil
}

func compiledSchema(s *schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(s.name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema compiler expects a parsed JSON value; round-trip the
	// definition through encoding/json to normalize the Go literal.
	defBytes, err := json.Marshal(s.definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiledSchemas.Store(s.name, compiled)
	return compiled, nil
}
