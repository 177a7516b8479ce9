package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    mergefield.Data
		wantErr bool
	}{
		{
			name:  "yaml",
			input: "name: Jane\nitems:\n  - a\n  - b\n",
			want:  mergefield.Data{"name": "Jane", "items": []interface{}{"a", "b"}},
		},
		{
			name:  "json",
			input: `{"total": 12.5, "customer": {"vip": true}}`,
			want:  mergefield.Data{"total": 12.5, "customer": map[string]interface{}{"vip": true}},
		},
		{
			name:  "non-string keys",
			input: "codes:\n  1: one\n  2: two\n",
			want:  mergefield.Data{"codes": map[string]interface{}{"1": "one", "2": "two"}},
		},
		{
			name:  "empty",
			input: "",
			want:  mergefield.Data{},
		},
		{
			name:    "not a mapping",
			input:   "- a\n- b\n",
			wantErr: true,
		},
		{
			name:    "invalid",
			input:   "a: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseData([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseData() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadDataMissingFile(t *testing.T) {
	_, err := loadData(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	data, err := loadData("")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestValidateData(t *testing.T) {
	dir := t.TempDir()
	schema := writeTestFile(t, dir, "schema.yaml", `
type: object
required: [name, items]
properties:
  name: {type: string}
  items:
    type: array
    items: {type: string}
  total: {type: number, minimum: 0}
`)

	tests := []struct {
		name    string
		data    mergefield.Data
		wantErr bool
	}{
		{"valid", mergefield.Data{"name": "Jane", "items": []interface{}{"a"}, "total": 3}, false},
		{"missing property", mergefield.Data{"name": "Jane"}, true},
		{"wrong type", mergefield.Data{"name": 1, "items": []interface{}{}}, true},
		{"below minimum", mergefield.Data{"name": "Jane", "items": []interface{}{}, "total": -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateData(schema, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDataBadSchema(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, validateData(filepath.Join(dir, "missing.json"), mergefield.Data{}))

	bad := writeTestFile(t, dir, "bad.json", `{"type": 5}`)
	assert.Error(t, validateData(bad, mergefield.Data{}))

	remote := writeTestFile(t, dir, "remote.json", `{"$ref": "https://example.com/schema.json"}`)
	assert.Error(t, validateData(remote, mergefield.Data{}))
}
