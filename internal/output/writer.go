// Package output persists outcome records as JSON documents.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/docr/internal/dispatch"
	"github.com/jackzampolin/docr/internal/ocrerr"
)

// documentSchema constrains the persisted format: an array of
// {file, response} objects. The response payload itself stays opaque.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["file", "response"],
		"properties": {
			"file": {"type": "string", "minLength": 1},
			"response": {}
		},
		"additionalProperties": false
	}
}`

var schema = jsonschema.MustCompileString("outcomes.json", documentSchema)

// entry is the on-disk shape of one outcome record.
type entry struct {
	File     string          `json:"file"`
	Response json.RawMessage `json:"response"`
}

// Save writes records to path as an indented JSON array, creating parent
// directories as needed. The document is validated against the output
// schema before anything hits disk.
func Save(records []dispatch.Record, path string) error {
	entries := make([]entry, len(records))
	for i, rec := range records {
		entries[i] = entry{File: rec.File, Response: rec.Response}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return ocrerr.Wrap(ocrerr.KindOther, err, "error encoding output").WithPath(path)
	}

	if err := validate(buf.Bytes()); err != nil {
		return ocrerr.Wrap(ocrerr.KindOther, err, "output failed schema validation").WithPath(path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fileError(err, path)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fileError(err, path)
	}
	return nil
}

// Load reads a previously saved document back into records.
func Load(path string) ([]dispatch.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(err, path)
	}
	if err := validate(data); err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindOther, err, "output file failed schema validation").WithPath(path)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindOther, err, "error decoding output file").WithPath(path)
	}

	records := make([]dispatch.Record, len(entries))
	for i, e := range entries {
		records[i] = dispatch.Record{File: e.File, Response: e.Response}
	}
	return records, nil
}

// validate checks raw JSON against the output document schema.
func validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

// fileError maps filesystem failures into the error taxonomy.
func fileError(err error, path string) *ocrerr.Error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ocrerr.New(ocrerr.KindFileAccess, "file not found").WithPath(path)
	case errors.Is(err, os.ErrPermission):
		return ocrerr.New(ocrerr.KindFileAccess, "permission denied").WithPath(path)
	default:
		return ocrerr.Wrap(ocrerr.KindFileAccess, err, "file error").WithPath(path)
	}
}
