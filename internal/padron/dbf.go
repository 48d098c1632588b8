package padron

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Known dBASE version bytes. Roll exports are normally dBASE III (0x03) or
// III+memo (0x83); IV variants show up from older municipal tooling.
var knownDBFVersions = map[byte]bool{
	0x02: true, 0x03: true, 0x04: true,
	0x83: true, 0x8b: true, 0xf5: true,
}

const (
	dbfHeaderSize    = 32
	dbfFieldDescSize = 32
	dbfHeaderEnd     = 0x0d
	dbfDeletedFlag   = '*'
)

type dbfField struct {
	name   string
	typ    byte
	length int
}

// ParseDBF reads a dBASE III/IV file into a Table. Deleted records (flag '*')
// are dropped. A file with an unrecognized version byte is still parsed when
// the header is otherwise coherent; municipal exports are frequently
// non-standard, so we warn instead of rejecting.
func ParseDBF(data []byte) (*Table, error) {
	if len(data) < dbfHeaderSize {
		return nil, fmt.Errorf("archivo DBF truncado: %d bytes", len(data))
	}

	t := &Table{Bytes: len(data)}

	version := data[0]
	if !knownDBFVersions[version] {
		t.Warnings = append(t.Warnings,
			fmt.Sprintf("byte de versión DBF no estándar (0x%02x), intentando leer de todos modos", version))
	}

	recordCount := binary.LittleEndian.Uint32(data[4:8])
	headerSize := int(binary.LittleEndian.Uint16(data[8:10]))
	recordSize := int(binary.LittleEndian.Uint16(data[10:12]))
	if headerSize < dbfHeaderSize+1 || headerSize > len(data) {
		return nil, fmt.Errorf("cabecera DBF inválida: tamaño %d", headerSize)
	}
	if recordSize < 1 {
		return nil, fmt.Errorf("registro DBF inválido: tamaño %d", recordSize)
	}

	// Field descriptors run from byte 32 to the 0x0D terminator.
	var fields []dbfField
	for off := dbfHeaderSize; off+dbfFieldDescSize <= headerSize; off += dbfFieldDescSize {
		if data[off] == dbfHeaderEnd {
			break
		}
		desc := data[off : off+dbfFieldDescSize]
		name := strings.TrimRight(string(desc[0:11]), "\x00")
		name = strings.TrimSpace(name)
		if name == "" {
			break
		}
		fields = append(fields, dbfField{
			name:   name,
			typ:    desc[11],
			length: int(desc[16]),
		})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("DBF sin descriptores de campo")
	}

	widths := 1 // deletion flag
	for _, f := range fields {
		t.Columns = append(t.Columns, f.name)
		widths += f.length
	}
	if widths != recordSize {
		t.Warnings = append(t.Warnings,
			fmt.Sprintf("tamaño de registro declarado %d difiere de la suma de campos %d", recordSize, widths))
	}

	for i := 0; i < int(recordCount); i++ {
		off := headerSize + i*recordSize
		if off+recordSize > len(data) {
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("registro %d fuera del archivo, se detiene la lectura", i+1))
			break
		}
		record := data[off : off+recordSize]
		if record[0] == dbfDeletedFlag {
			continue
		}

		row := make([]string, 0, len(fields))
		pos := 1
		for _, f := range fields {
			end := pos + f.length
			if end > len(record) {
				end = len(record)
			}
			row = append(row, strings.TrimSpace(latin1ToUTF8(record[pos:end])))
			pos = end
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// latin1ToUTF8 decodes the single-byte encoding roll exports use. Every byte
// maps to the code point of the same value, which covers the accented names.
func latin1ToUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
