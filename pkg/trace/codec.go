package trace

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tracegraph/pkg/errors"
)

// Recorded trace file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath infers the trace format from a file extension.
// Returns "" for unknown extensions.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// ReadJSON decodes a JSON trace from r.
//
//	{
//	  "operators": [
//	    {"kind": "onnx::Conv", "scope": "Net/Conv2d[conv1]", "inputs": [0, 1],
//	     "outputs": [{"id": 5, "repr": "%5 : Float(1, 8, 4, 4) = onnx::Conv(%0, %1)"}]}
//	  ]
//	}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json trace")
	}
	return &t, nil
}

// ReadYAML decodes a YAML trace from r. The schema matches [ReadJSON].
func ReadYAML(r io.Reader) (*Trace, error) {
	var t Trace
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml trace")
	}
	return &t, nil
}

// Read decodes a trace in the given format from r.
func Read(r io.Reader, format string) (*Trace, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported trace format %q", format)
}

// ReadFile reads a trace file, choosing the decoder from the file extension.
func ReadFile(path string) (*Trace, error) {
	format := FormatFromPath(path)
	if format == "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown trace file extension: %s", path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format)
}

// WriteJSON encodes a trace as indented JSON.
func WriteJSON(t *Trace, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode trace")
	}
	return nil
}
