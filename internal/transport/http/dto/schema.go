package dto

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	createTodoSchema = mustCompile("create_todo.json")
	updateTodoSchema = mustCompile("update_todo.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	return jsonschema.MustCompileString(name, string(data))
}

// DecodeCreateTodo validates body against the create schema and decodes it.
// A non-empty details slice means the body was rejected.
func DecodeCreateTodo(body []byte) (*CreateTodoRequest, []string) {
	var req CreateTodoRequest
	if details := decode(body, createTodoSchema, &req); len(details) > 0 {
		return nil, details
	}
	return &req, nil
}

func DecodeUpdateTodo(body []byte) (*UpdateTodoRequest, []string) {
	var req UpdateTodoRequest
	if details := decode(body, updateTodoSchema, &req); len(details) > 0 {
		return nil, details
	}
	return &req, nil
}

func decode(body []byte, schema *jsonschema.Schema, out interface{}) []string {
	if len(bytes.TrimSpace(body)) == 0 {
		return []string{"request body is required"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return []string{"malformed JSON body"}
	}

	if err := schema.Validate(doc); err != nil {
		return schemaDetails(err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return []string{"malformed JSON body"}
	}
	return nil
}

// schemaDetails flattens a validation error tree into one line per leaf.
func schemaDetails(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectSchemaErrors(ve, &out)
	if len(out) == 0 {
		out = append(out, ve.Message)
	}
	return out
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, fmt.Sprintf("%s: %s", pointerToField(err.InstanceLocation), err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}

func pointerToField(pointer string) string {
	field := strings.TrimPrefix(pointer, "/")
	if field == "" {
		return "body"
	}
	return strings.ReplaceAll(field, "/", ".")
}
