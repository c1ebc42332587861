// Package output renders reconciliation reports.
//
// Three formats are supported: a terminal table for people, and JSON or
// YAML for scripts. The engine itself never formats anything; callers
// pick a [Format] and hand the [reconcile.Report] to [Write].
package output

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/reconcile"
)

// Format is an output format name.
type Format string

const (
	// FormatTable is the default terminal table.
	FormatTable Format = "table"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names, for flag help and completion.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// ParseFormat parses a case-insensitive format name. An empty string
// selects [FormatTable].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", cerrors.New(cerrors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
}

// Structured reports whether f is meant for machines rather than people.
func (f Format) Structured() bool { return f == FormatJSON || f == FormatYAML }

// Write renders rep to w in format f.
func Write(w io.Writer, f Format, rep *reconcile.Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	case FormatTable, "":
		_, err := io.WriteString(w, Table(rep)+"\n")
		return err
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unsupported format: %s", f)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML with two-space indentation.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
