package annotate

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Header is the submission CSV header
var Header = []string{
	"TEXT_ID", "SENTENCE_ID", "ANNOTATION_ID", "TOKENS",
	"SENT_TOKEN_START", "SENT_TOKEN_END", "DOC_TOKEN_START", "DOC_TOKEN_END",
	"TYPE", "CORRECTION", "COMMENT",
}

// ReadCSV parses a submission CSV. The header row is required.
func ReadCSV(r io.Reader) ([]model.Annotation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !strings.EqualFold(strings.TrimPrefix(header[0], "\ufeff"), Header[0]) {
		return nil, fmt.Errorf("unexpected header %q", header[0])
	}

	var annos []model.Annotation
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		a, err := parseRow(rec)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		annos = append(annos, a)
	}
	return annos, nil
}

func parseRow(rec []string) (model.Annotation, error) {
	ints := make([]int, 0, 6)
	for _, col := range []int{1, 2, 4, 5, 6, 7} {
		n, err := strconv.Atoi(strings.TrimSpace(rec[col]))
		if err != nil {
			return model.Annotation{}, fmt.Errorf("column %s: %w", Header[col], err)
		}
		ints = append(ints, n)
	}

	return model.Annotation{
		TextID:       rec[0],
		SentenceID:   ints[0],
		AnnotationID: ints[1],
		Tokens:       rec[3],
		SentStart:    ints[2],
		SentEnd:      ints[3],
		DocStart:     ints[4],
		DocEnd:       ints[5],
		Type:         model.Label(rec[8]),
		Correction:   rec[9],
		Comment:      rec[10],
	}, nil
}

// WriteCSV writes annotations with every field double-quoted
func WriteCSV(w io.Writer, annos []model.Annotation) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Header); err != nil {
		return err
	}
	for _, a := range annos {
		if err := writeRecord(bw, record(a)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func record(a model.Annotation) []string {
	return []string{
		a.TextID,
		strconv.Itoa(a.SentenceID),
		strconv.Itoa(a.AnnotationID),
		a.Tokens,
		strconv.Itoa(a.SentStart),
		strconv.Itoa(a.SentEnd),
		strconv.Itoa(a.DocStart),
		strconv.Itoa(a.DocEnd),
		string(a.Type),
		a.Correction,
		a.Comment,
	}
}

// encoding/csv only quotes fields that need it
func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// ReadFile reads a submission CSV from disk
func ReadFile(path string) ([]model.Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer func() { _ = f.Close() }()

	annos, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return annos, nil
}

// WriteFile writes a submission CSV atomically
func WriteFile(path string, annos []model.Annotation) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".boxcheck-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := WriteCSV(tmp, annos); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write annotations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename annotations: %w", err)
	}
	return nil
}

// PostprocessFile merges contiguous spans of a submission CSV in place and
// returns the number of rows before and after.
func PostprocessFile(path string) (int, int, error) {
	annos, err := ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	merged := Merge(annos)
	if err := WriteFile(path, merged); err != nil {
		return 0, 0, err
	}
	return len(annos), len(merged), nil
}
