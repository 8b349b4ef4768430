// Package pipeline reads and writes setup streams via stdin/stdout in
// JSONL format, the canonical pipe format: one raw setup object per line,
// as written by `pitwall setups --format jsonl`.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/derickschaefer/pitwall/internal/api"
	"github.com/derickschaefer/pitwall/internal/model"
)

// ReadSetups reads JSONL setup objects from r. Blank lines and lines
// starting with // are skipped.
func ReadSetups(r io.Reader) ([]model.Setup, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var out []model.Setup
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if _, ok := rec["id"]; !ok {
			return nil, fmt.Errorf("line %d: setup object has no id", lineNum)
		}
		out = append(out, api.SetupFromObject(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no setups read from input (is stdin empty?)")
	}
	return out, nil
}

// WriteJSONL writes setups as JSONL to w.
func WriteJSONL(w io.Writer, setups []model.Setup) error {
	enc := json.NewEncoder(w)
	for _, s := range setups {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if f is a terminal (not a pipe).
func IsTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
