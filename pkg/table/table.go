// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

// Encoding names reported by Decode.
const (
	EncodingUTF8 = "utf-8"
	EncodingGBK  = "gbk"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"NULL": {},
	"null": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// IsMissing reports whether a cell is a missing-value marker.
func IsMissing(cell string) bool {
	_, ok := missingMarkers[cell]
	return ok
}

// Table is a parsed delimited-text table. Rows are aligned to Columns.
type Table struct {
	Columns  []string
	Rows     []schema.Row
	Encoding string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column.
func (t *Table) Index(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Decode converts raw bytes to UTF-8 text, falling back to GBK when the
// input is not valid UTF-8.
func Decode(content []byte) (string, string, error) {
	content = bytes.TrimPrefix(content, bom)
	if utf8.Valid(content) {
		return string(content), EncodingUTF8, nil
	}
	out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), content)
	if err != nil {
		return "", "", fmt.Errorf("input is neither UTF-8 nor GBK: %w", err)
	}
	return string(out), EncodingGBK, nil
}

// Read parses a comma-separated table with a header row.
func Read(r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to read table", err)
	}
	return Parse(content)
}

// Parse parses raw table bytes.
func Parse(content []byte) (*Table, error) {
	text, enc, err := Decode(content)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to decode table", err)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "no columns to parse from file")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to parse table header", err)
	}

	t := &Table{Columns: dedupe(header), Encoding: enc}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to parse table", err)
		}
		if len(rec) > len(t.Columns) {
			line, _ := cr.FieldPos(0)
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("expected %d fields in line %d, saw %d", len(t.Columns), line, len(rec)),
				map[string]any{"line": line})
		}

		row := make(schema.Row, len(t.Columns))
		for i := range row {
			if i >= len(rec) || IsMissing(rec[i]) {
				row[i] = schema.Null()
				continue
			}
			row[i] = schema.String(rec[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// dedupe renames repeated header names to name.1, name.2, ...
func dedupe(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for _, h := range header {
		taken[h] = struct{}{}
	}
	for i, h := range header {
		n, dup := seen[h]
		seen[h] = n + 1
		if !dup {
			out[i] = h
			continue
		}
		name := h + "." + strconv.Itoa(n)
		for _, clash := taken[name]; clash; _, clash = taken[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		seen[h] = n + 1
		taken[name] = struct{}{}
		out[i] = name
	}
	return out
}

// Write encodes columns and rows as UTF-8 CSV with a byte order mark.
// Null cells are written empty.
func Write(w io.Writer, columns []string, rows []schema.Row) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	rec := make([]string, len(columns))
	for _, row := range rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) {
				rec[i] = row[i].Text()
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
