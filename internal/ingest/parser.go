package ingest

import (
	"strings"
	"unicode"
)

// Table is the parsed form of an uploaded CSV file.
type Table struct {
	Headers  []string            `json:"headers"`
	Rows     []map[string]string `json:"rows"`
	RowCount int                 `json:"rowCount"`
}

// ParseCSV splits simple comma-separated text into a Table.
//
// This is deliberately not an RFC 4180 reader: quoted commas, embedded
// newlines and doubled quotes are not understood. Each field is trimmed and
// loses at most one leading and one trailing double quote. Rows shorter than
// the header are padded with "" and longer rows are truncated.
func ParseCSV(text string) Table {
	trimmed := trim(text)
	if trimmed == "" {
		return Table{Headers: []string{}, Rows: []map[string]string{}}
	}

	lines := strings.Split(trimmed, "\n")
	headers := splitLine(lines[0])

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitLine(line)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows, RowCount: len(rows)}
}

func splitLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = unquote(trim(f))
	}
	return fields
}

// trim removes the characters a browser's String.prototype.trim removes:
// Unicode white space and line terminators plus the byte order mark, but not
// NEL (U+0085).
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\ufeff' || (unicode.IsSpace(r) && r != '\u0085')
	})
}

// unquote strips one leading and one trailing '"', independently.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
