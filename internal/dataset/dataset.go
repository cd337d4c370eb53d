// Package dataset reads and writes example files of the form {"data": [...]}.
//
// Files are indented with four spaces, keep string arrays on a single line
// and leave non-ASCII text unescaped, so a file written here reads back and
// rewrites to the same bytes.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Variant names the element shape of a dataset file
type Variant string

const (
	VariantPlain     Variant = "plain"     // {"text", "labels"}
	VariantRetrieval Variant = "retrieval" // {"ctx", "sent", "labels"}
)

// ParseVariant resolves a variant name
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantPlain:
		return VariantPlain, nil
	case VariantRetrieval:
		return VariantRetrieval, nil
	}
	return "", fmt.Errorf("unknown dataset variant: %s (supported: plain, retrieval)", s)
}

// Record is an element type a dataset file can hold
type Record interface {
	model.Example | model.RetrievalExample
}

type file[T Record] struct {
	Data []T `json:"data"`
}

type field struct {
	key    string
	values []string
}

func fields(rec any) []field {
	switch r := rec.(type) {
	case model.Example:
		return []field{
			{"text", r.Text},
			{"labels", labelStrings(r.Labels)},
		}
	case model.RetrievalExample:
		return []field{
			{"ctx", r.Ctx},
			{"sent", r.Sent},
			{"labels", labelStrings(r.Labels)},
		}
	}
	return nil
}

func labelStrings(ls []model.Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}

// Read decodes a dataset
func Read[T Record](r io.Reader) ([]T, error) {
	var f file[T]
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return f.Data, nil
}

// ReadFile decodes a dataset file
func ReadFile[T Record](path string) ([]T, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = fh.Close() }()

	data, err := Read[T](bufio.NewReader(fh))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Write encodes a dataset
func Write[T Record](w io.Writer, items []T) error {
	bw := bufio.NewWriter(w)

	if len(items) == 0 {
		_, _ = bw.WriteString("{\n    \"data\": []\n}")
		return bw.Flush()
	}

	_, _ = bw.WriteString("{\n    \"data\": [\n")
	for i, item := range items {
		_, _ = bw.WriteString("        {\n")
		fs := fields(item)
		for j, f := range fs {
			arr, err := encodeStrings(f.values)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(bw, "            %q: %s", f.key, arr)
			if j < len(fs)-1 {
				_ = bw.WriteByte(',')
			}
			_ = bw.WriteByte('\n')
		}
		_, _ = bw.WriteString("        }")
		if i < len(items)-1 {
			_ = bw.WriteByte(',')
		}
		_ = bw.WriteByte('\n')
	}
	_, _ = bw.WriteString("    ]\n}")
	return bw.Flush()
}

// WriteFile encodes a dataset to path atomically
func WriteFile[T Record](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".boxcheck-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, items); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename dataset: %w", err)
	}
	return nil
}

// encodeStrings renders ["a", "b"] without HTML escaping
func encodeStrings(values []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := []byte{'['}
	for i, v := range values {
		buf.Reset()
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("encode %q: %w", v, err)
		}
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...)
	}
	return string(append(out, ']')), nil
}
