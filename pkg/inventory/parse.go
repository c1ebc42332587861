package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/crateup/pkg/errors"
)

// Snapshot is the parsed output of one "install --list" run.
type Snapshot struct {
	Records     []Record     // Header records in output order
	Diagnostics []Diagnostic // Non-fatal problems found while parsing
}

// Diagnostic describes a header line that parsed only partially.
type Diagnostic struct {
	Line   int    `json:"line" yaml:"line"`     // 1-based line number in the listing
	Text   string `json:"text" yaml:"text"`     // Raw header line
	Reason string `json:"reason" yaml:"reason"` // What was missing
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

// Parse turns the listing printed by "cargo install --list" into records.
//
// The listing alternates header lines, one per installed crate, with indented
// lines naming the binaries it provides:
//
//	ripgrep v14.1.0:
//	    rg
//	mdbook v0.4.36 (https://github.com/rust-lang/mdBook#1a2b3c4d):
//	    mdbook
//
// Indented and blank lines are skipped. Output that is not valid UTF-8 is
// rejected as a whole.
func Parse(out []byte) (*Snapshot, error) {
	if !utf8.Valid(out) {
		return nil, errors.New(errors.ErrCodeInvalidOutput, "installed crate listing is not valid UTF-8")
	}

	snap := &Snapshot{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || isContinuation(line) {
			continue
		}
		rec, reason := ParseLine(line)
		if reason != "" {
			snap.Diagnostics = append(snap.Diagnostics, Diagnostic{Line: n, Text: line, Reason: reason})
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOutput, err, "read installed crate listing")
	}
	return snap, nil
}

// ParseLine tokenizes a single header line. The second return value is a
// non-empty reason when the line was missing expected fields; the record is
// still returned so that it shows up, unresolvable, in the inventory.
//
// Fields are separated by single spaces:
//   - 0: crate name
//   - 1: version, with one trailing ":" and one leading "v" removed
//   - 2: optional source in parentheses; "http..." is a git URL, anything
//     else a local path. Without it, or when it is empty, the crate came
//     from the registry.
func ParseLine(line string) (Record, string) {
	fields := strings.Split(line, " ")
	rec := Record{Name: fields[0]}

	if len(fields) < 2 {
		return rec, "missing version"
	}
	rec.Installed = strings.TrimPrefix(strings.TrimSuffix(fields[1], ":"), "v")

	if len(fields) > 2 {
		if src := strings.Trim(fields[2], "():"); src != "" {
			rec.Provenance = classify(src)
		}
	}

	var reason string
	if rec.Installed == "" {
		reason = "empty version"
	}
	return rec, reason
}

func classify(src string) Provenance {
	if strings.HasPrefix(src, "http") {
		return FromVersionControl(src)
	}
	return FromLocal(src)
}

func isContinuation(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsSpace(r)
}
