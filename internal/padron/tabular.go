package padron

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads the first sheet of an XLSX workbook; the first row is the
// header.
func ParseExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir el archivo Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el archivo Excel no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la hoja %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("la hoja %q está vacía", sheets[0])
	}

	return &Table{
		Columns: rows[0],
		Rows:    rows[1:],
		Bytes:   len(data),
	}, nil
}

// ParseDelimited reads comma or semicolon separated text with a header row.
// The separator is whichever of the two splits the header into more fields.
func ParseDelimited(data []byte) (*Table, error) {
	header := firstLine(data)
	sep := ','
	if strings.Count(header, ";") > strings.Count(header, ",") {
		sep = ';'
	}
	return parseSeparated(data, sep)
}

// ParseClipboard reads a pasted blob. Spreadsheets paste tab-separated text,
// so tab wins whenever the first line contains one.
func ParseClipboard(data []byte) (*Table, error) {
	sep := ','
	if strings.ContainsRune(firstLine(data), '\t') {
		sep = '\t'
	}
	return parseSeparated(data, sep)
}

func parseSeparated(data []byte, sep rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el texto delimitado: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("texto vacío")
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}
	return &Table{
		Columns: columns,
		Rows:    records[1:],
		Bytes:   len(data),
	}, nil
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return string(bytes.TrimRight(data, "\r"))
}
