package table

import (
	"regexp"
	"strings"
)

// Delimiter separates fields. Quoting is not supported: a quoted field that
// contains the delimiter or a newline yields misaligned columns.
const Delimiter = ','

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// Parse turns delimited text into a Table. The first line is the header;
// blank lines are dropped; short rows are padded with "" and extra fields
// are ignored. Empty input yields an empty table.
func Parse(text string) *Table {
	text = strings.TrimSpace(text)
	if text == "" {
		return Empty()
	}

	lines := lineBreak.Split(text, -1)
	records := make([][]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, string(Delimiter)))
	}
	return FromRecords(records)
}

// FromRecords builds a Table from already split records, the first being
// the header. Header names and values are trimmed.
func FromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return Empty()
	}

	headerRow := records[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for j, header := range headers {
			if j < len(record) {
				row[header] = strings.TrimSpace(record[j])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Header: headers, Rows: rows}
}
