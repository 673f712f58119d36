package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const todoListSchemaURL = "todos.schema.json"

const todoListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "priority", "completed", "createdAt"],
    "properties": {
      "id": {"type": "integer"},
      "title": {"type": "string"},
      "description": {"type": "string"},
      "priority": {"enum": ["High", "Medium", "Low"]},
      "completed": {"type": "boolean"},
      "createdAt": {"type": "string"},
      "weatherInfo": {
        "oneOf": [
          {"type": "null"},
          {
            "type": "object",
            "required": ["temperature", "description"],
            "properties": {
              "temperature": {"type": "number"},
              "description": {"type": "string"}
            }
          }
        ]
      }
    }
  }
}`

var compiledTodoListSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(todoListSchemaURL, strings.NewReader(todoListSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(todoListSchemaURL)
})

// decodeTodoList parses a persisted todo list, rejecting documents that do not match the list schema.
func decodeTodoList(data []byte) ([]TodoItem, error) {
	schema, err := compiledTodoListSchema()
	if err != nil {
		return nil, fmt.Errorf("compile todo schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("todos do not match schema: %s", schemaErrorSummary(err))
	}

	var items []TodoItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return items, nil
}

func schemaErrorSummary(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var messages []string
	collectSchemaMessages(ve, &messages)
	return strings.Join(messages, "; ")
}

func collectSchemaMessages(err *jsonschema.ValidationError, out *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, fmt.Sprintf("%s: %s", err.InstanceLocation, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaMessages(cause, out)
	}
}
