package padron

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table is the parser-neutral shape every input format reduces to. Handlers
// preview it or hand it to the importer.
type Table struct {
	Columns  []string   `json:"columnas"`
	Rows     [][]string `json:"-"`
	Warnings []string   `json:"advertencias"`
	Bytes    int        `json:"bytes"`
}

// Sample returns up to n rows for the preview endpoints.
func (t *Table) Sample(n int) [][]string {
	if len(t.Rows) < n {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

var requiredColumns = []string{"ELECTOR", "APE_PAT", "APE_MAT", "NOMBRE", "SECCION"}

// columnSetters maps canonical source-column names to entry fields. The
// mapping is data; adding a column means adding a row here.
var columnSetters = map[string]func(*PadronEntry, string){
	"CONSECUTIV": func(e *PadronEntry, v string) { e.Consecutivo = atoiPtr(v) },
	"ELECTOR":    func(e *PadronEntry, v string) { e.Elector = clip(v, 20) },
	"FOL_NAC":    func(e *PadronEntry, v string) { e.FolioNacimiento = clip(v, 20) },
	"OCR":        func(e *PadronEntry, v string) { e.OCR = clip(v, 20) },
	"APE_PAT":    func(e *PadronEntry, v string) { e.ApellidoPaterno = clip(v, 80) },
	"APE_MAT":    func(e *PadronEntry, v string) { e.ApellidoMaterno = clip(v, 80) },
	"NOMBRE":     func(e *PadronEntry, v string) { e.Nombre = clip(v, 80) },
	"FEC_NAC":    func(e *PadronEntry, v string) { e.FechaNacimiento = parseDate(v) },
	"EDAD":       func(e *PadronEntry, v string) { e.Edad = atoiPtr(v) },
	"SEXO":       func(e *PadronEntry, v string) { e.Sexo = clip(v, 1) },
	"CURP":       func(e *PadronEntry, v string) { e.CURP = clip(v, 18) },
	"OCUPACION":  func(e *PadronEntry, v string) { e.Ocupacion = clip(v, 80) },
	"CALLE":      func(e *PadronEntry, v string) { e.Calle = clip(v, 120) },
	"NUM_EXT":    func(e *PadronEntry, v string) { e.NumExterior = clip(v, 20) },
	"NUM_INT":    func(e *PadronEntry, v string) { e.NumInterior = clip(v, 20) },
	"COLONIA":    func(e *PadronEntry, v string) { e.Colonia = clip(v, 120) },
	"CP":         func(e *PadronEntry, v string) { e.CP = clip(v, 5) },
	"TIEMPRES":   func(e *PadronEntry, v string) { e.TiempoResidencia = clip(v, 20) },
	"ENTIDAD":    func(e *PadronEntry, v string) { e.Entidad = clip(v, 50) },
	"DISTRITO":   func(e *PadronEntry, v string) { e.Distrito = clip(v, 10) },
	"MUNICIPIO":  func(e *PadronEntry, v string) { e.Municipio = clip(v, 80) },
	"SECCION":    func(e *PadronEntry, v string) { e.Seccion = clip(v, 6) },
	"LOCALIDAD":  func(e *PadronEntry, v string) { e.Localidad = clip(v, 80) },
	"MANZANA":    func(e *PadronEntry, v string) { e.Manzana = clip(v, 10) },
	"EN_LN":      func(e *PadronEntry, v string) { e.EnLN = clip(v, 5) },
	"MISION":     func(e *PadronEntry, v string) { e.Mision = clip(v, 20) },
}

// CheckColumns verifies the required source columns are present,
// case-insensitively.
func CheckColumns(columns []string) error {
	have := map[string]bool{}
	for _, c := range columns {
		have[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	var missing []string
	for _, req := range requiredColumns {
		if !have[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("faltan columnas requeridas: %s", strings.Join(missing, ", "))
	}
	return nil
}

func entryFromRow(columns []string, row []string) (*PadronEntry, error) {
	e := &PadronEntry{Activo: true}
	for i, col := range columns {
		if i >= len(row) {
			break
		}
		set, ok := columnSetters[strings.ToUpper(strings.TrimSpace(col))]
		if !ok {
			continue
		}
		set(e, row[i])
	}
	if e.Elector == "" {
		return nil, fmt.Errorf("clave de elector vacía")
	}
	return e, nil
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		runes := []rune(s)
		if len(runes) > max {
			return string(runes[:max])
		}
	}
	return s
}

func atoiPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseDate accepts the roll's compact YYYYMMDD plus ISO-8601 dates.
// Unparsable values become null, never errors.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"20060102", "2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
