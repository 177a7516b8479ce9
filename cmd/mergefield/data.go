package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield"
)

// loadData reads a YAML or JSON mapping. An empty path yields empty data.
func loadData(path string) (mergefield.Data, error) {
	if path == "" {
		return mergefield.Data{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening data file %s: %w", path, err)
	}
	return parseData(raw)
}

func parseData(raw []byte) (mergefield.Data, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if doc == nil {
		return mergefield.Data{}, nil
	}
	m, ok := normalize(doc).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("data must be a mapping, got %T", doc)
	}
	return mergefield.Data(m), nil
}

// normalize turns map[interface{}]interface{} produced for non-string keys
// into string-keyed maps so that paths and JSON schemas can address them.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []interface{}:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}

// validateData checks data against the JSON schema at schemaPath.
func validateData(schemaPath string, data mergefield.Data) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("remote $ref not allowed: %s", url)
	}

	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("error opening schema %s: %w", schemaPath, err)
	}
	// schemas may be written in YAML too
	var schemaDoc interface{}
	if err := yaml.Unmarshal(raw, &schemaDoc); err != nil {
		return fmt.Errorf("invalid schema %s: %w", schemaPath, err)
	}
	schemaJSON, err := json.Marshal(normalize(schemaDoc))
	if err != nil {
		return fmt.Errorf("invalid schema %s: %w", schemaPath, err)
	}

	const url = "schema://data.json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("invalid schema %s: %w", schemaPath, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("invalid schema %s: %w", schemaPath, err)
	}

	value, err := jsonValue(data)
	if err != nil {
		return err
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("data does not match %s: %w", schemaPath, err)
	}
	return nil
}

// jsonValue converts data to the plain JSON types the validator expects.
func jsonValue(data mergefield.Data) (interface{}, error) {
	raw, err := json.Marshal(map[string]interface{}(data))
	if err != nil {
		return nil, fmt.Errorf("data is not JSON compatible: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
