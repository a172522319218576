package batches

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/pkg/canon"
)

var delimiters = []rune{',', ';', '\t', '|'}

var bom = []byte("\xef\xbb\xbf")

// Table is a parsed delimited export. Every record has exactly one cell per
// header column.
type Table struct {
	Header    []string
	Records   [][]string
	Delimiter rune
}

// ParseTable reads a delimited export, sniffing the delimiter from the
// header line. Input that is not valid UTF-8 is decoded as Windows-1252.
func ParseTable(data []byte) (*Table, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	return readTable(text, sniffDelimiter(text))
}

// parseTableWith reads a delimited export with a known delimiter.
func parseTableWith(data []byte, delim rune) (*Table, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	return readTable(text, delim)
}

func decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, bom)
	if utf8.Valid(data) {
		return data, nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return out, nil
}

// sniffDelimiter picks the candidate occurring most often outside quotes on
// the first non-blank line. Ties keep the earlier candidate; comma wins when
// none occurs.
func sniffDelimiter(text []byte) rune {
	var line []byte
	for l := range bytes.Lines(text) {
		if len(bytes.TrimSpace(l)) > 0 {
			line = l
			break
		}
	}

	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		if n := countUnquoted(line, d); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func countUnquoted(line []byte, d rune) int {
	n := 0
	quoted := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}

func readTable(text []byte, delim rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidFile)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	if !slices.ContainsFunc(header, func(h string) bool { return h != "" }) {
		return nil, fmt.Errorf("%w: empty header", ErrInvalidFile)
	}

	body := records[1:]
	if len(body) == 0 {
		return nil, ErrEmptyFile
	}

	for i, rec := range body {
		fitted, ok := fit(rec, len(header))
		if !ok {
			return nil, fmt.Errorf(
				"%w: record %d has %d fields, header has %d",
				ErrInvalidFile, i+1, len(rec), len(header),
			)
		}
		body[i] = fitted
	}

	return &Table{Header: header, Records: body, Delimiter: delim}, nil
}

// fit pads rec to width. Extra trailing cells are dropped only when blank.
func fit(rec []string, width int) ([]string, bool) {
	if len(rec) > width {
		for _, extra := range rec[width:] {
			if strings.TrimSpace(extra) != "" {
				return nil, false
			}
		}
		return rec[:width], true
	}
	for len(rec) < width {
		rec = append(rec, "")
	}
	return rec, true
}

type layout struct {
	narrative int
	trigger   int
	key       int
}

// resolve maps column names to header positions, comparing names in
// canonical form. An empty narrative name selects the first column. The
// narrative column must exist; a missing trigger or key column is dropped
// from the returned Columns.
func (t *Table) resolve(cols Columns) (Columns, layout, error) {
	l := layout{narrative: 0, trigger: -1, key: -1}
	resolved := Columns{Narrative: t.Header[0]}

	if cols.Narrative != "" {
		i := t.column(cols.Narrative)
		if i < 0 {
			return Columns{}, l, fmt.Errorf("%w: %q", ErrInvalidColumn, cols.Narrative)
		}
		l.narrative = i
		resolved.Narrative = t.Header[i]
	}
	if i := t.column(cols.Trigger); i >= 0 {
		l.trigger = i
		resolved.Trigger = t.Header[i]
	}
	if i := t.column(cols.Key); i >= 0 {
		l.key = i
		resolved.Key = t.Header[i]
	}

	return resolved, l, nil
}

func (t *Table) column(name string) int {
	if name == "" {
		return -1
	}
	want := canon.String(name)
	return slices.IndexFunc(t.Header, func(h string) bool {
		return canon.String(h) == want
	})
}

// rows converts records to engine input. The row key is the key column
// value, or the 1-based record number when that is absent or blank.
func (t *Table) rows(l layout) []classify.Row {
	names := t.fieldNames()
	rows := make([]classify.Row, len(t.Records))

	for i, rec := range t.Records {
		fields := make(map[string]string, len(names))
		for j, name := range names {
			fields[name] = rec[j]
		}

		row := classify.Row{
			Key:       strconv.Itoa(i + 1),
			Narrative: rec[l.narrative],
			Fields:    fields,
		}
		if l.trigger >= 0 {
			row.Trigger = rec[l.trigger]
		}
		if l.key >= 0 {
			if k := strings.TrimSpace(rec[l.key]); k != "" {
				row.Key = k
			}
		}
		rows[i] = row
	}

	return rows
}

// fieldNames keys the stored fields map. Blank headers become column_N and
// repeated headers take a _2, _3 suffix that no real header already uses.
func (t *Table) fieldNames() []string {
	reserved := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		if h != "" {
			reserved[h] = true
		}
	}

	names := make([]string, len(t.Header))
	used := make(map[string]bool, len(t.Header))
	for i, h := range t.Header {
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 2; used[name] || (name != h && reserved[name]); n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// WriteLabeled writes the table with ExportColumn appended, using the
// table's delimiter. labels[i] fills record i; missing labels stay blank.
func (t *Table) WriteLabeled(w io.Writer, labels []string) error {
	cw := csv.NewWriter(w)
	cw.Comma = t.Delimiter

	if err := cw.Write(append(slices.Clone(t.Header), ExportColumn)); err != nil {
		return err
	}
	for i, rec := range t.Records {
		var label string
		if i < len(labels) {
			label = labels[i]
		}
		if err := cw.Write(append(slices.Clone(rec), label)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
