package padron

import (
	"testing"
)

func TestParseDelimitedComma(t *testing.T) {
	data := []byte("ELECTOR,APE_PAT,APE_MAT,NOMBRE,SECCION\nAAA1,GARCIA,LOPEZ,JUAN,0123\nAAA2,SOTO,RUIZ,ANA,0124\n")
	table, err := ParseDelimited(data)
	if err != nil {
		t.Fatalf("ParseDelimited: %v", err)
	}
	if len(table.Columns) != 5 || table.Columns[0] != "ELECTOR" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 || table.Rows[1][3] != "ANA" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestParseDelimitedSemicolon(t *testing.T) {
	data := []byte("ELECTOR;APE_PAT;APE_MAT;NOMBRE;SECCION\nAAA1;GARCIA;LOPEZ;JUAN;0123\n")
	table, err := ParseDelimited(data)
	if err != nil {
		t.Fatalf("ParseDelimited: %v", err)
	}
	if len(table.Columns) != 5 {
		t.Fatalf("semicolon not detected: %v", table.Columns)
	}
	if table.Rows[0][1] != "GARCIA" {
		t.Errorf("row = %v", table.Rows[0])
	}
}

func TestParseClipboardTab(t *testing.T) {
	data := []byte("ELECTOR\tAPE_PAT\tAPE_MAT\tNOMBRE\tSECCION\nAAA1\tGARCIA\tLOPEZ\tJUAN\t0123\n")
	table, err := ParseClipboard(data)
	if err != nil {
		t.Fatalf("ParseClipboard: %v", err)
	}
	if len(table.Columns) != 5 || table.Rows[0][0] != "AAA1" {
		t.Errorf("tab blob misparsed: cols=%v rows=%v", table.Columns, table.Rows)
	}
}

func TestParseClipboardFallsBackToComma(t *testing.T) {
	data := []byte("ELECTOR,APE_PAT,APE_MAT,NOMBRE,SECCION\nAAA1,GARCIA,LOPEZ,JUAN,0123\n")
	table, err := ParseClipboard(data)
	if err != nil {
		t.Fatalf("ParseClipboard: %v", err)
	}
	if len(table.Columns) != 5 {
		t.Errorf("comma blob misparsed: %v", table.Columns)
	}
}

func TestCheckColumns(t *testing.T) {
	ok := []string{"consecutiv", "Elector", "APE_PAT", "ape_mat", "NOMBRE", "SECCION"}
	if err := CheckColumns(ok); err != nil {
		t.Errorf("case-insensitive match failed: %v", err)
	}

	missing := []string{"ELECTOR", "NOMBRE"}
	if err := CheckColumns(missing); err == nil {
		t.Error("missing required columns must fail")
	}
}

func TestEntryFromRow(t *testing.T) {
	columns := []string{"ELECTOR", "APE_PAT", "APE_MAT", "NOMBRE", "SECCION", "FEC_NAC", "EDAD", "CURP"}
	row := []string{" GRLPJN80010126H100 ", "GARCÍA", "LÓPEZ", "JUAN", "0123", "19800101", "46", "GALJ800101HSRRPN01"}

	e, err := entryFromRow(columns, row)
	if err != nil {
		t.Fatalf("entryFromRow: %v", err)
	}
	if e.Elector != "GRLPJN80010126H100" {
		t.Errorf("elector not trimmed: %q", e.Elector)
	}
	if e.ApellidoPaterno != "GARCÍA" || e.Nombre != "JUAN" {
		t.Errorf("names: %q %q", e.ApellidoPaterno, e.Nombre)
	}
	if e.FechaNacimiento == nil || e.FechaNacimiento.Year() != 1980 {
		t.Errorf("birth date: %v", e.FechaNacimiento)
	}
	if e.Edad == nil || *e.Edad != 46 {
		t.Errorf("age: %v", e.Edad)
	}
	if !e.Activo {
		t.Error("new entries must be active")
	}
}

func TestEntryFromRowUnparsableDateIsNull(t *testing.T) {
	columns := []string{"ELECTOR", "APE_PAT", "APE_MAT", "NOMBRE", "SECCION", "FEC_NAC"}
	row := []string{"AAA1", "X", "Y", "Z", "0001", "no-es-fecha"}

	e, err := entryFromRow(columns, row)
	if err != nil {
		t.Fatalf("bad date must not fail the row: %v", err)
	}
	if e.FechaNacimiento != nil {
		t.Errorf("unparsable date should be null, got %v", e.FechaNacimiento)
	}
}

func TestEntryFromRowEmptyElector(t *testing.T) {
	columns := []string{"ELECTOR", "APE_PAT", "APE_MAT", "NOMBRE", "SECCION"}
	if _, err := entryFromRow(columns, []string{"  ", "X", "Y", "Z", "0001"}); err == nil {
		t.Error("empty elector must fail the row")
	}
}

func TestClipTruncatesRunes(t *testing.T) {
	if got := clip("ÁÉÍÓÚ", 3); got != "ÁÉÍ" {
		t.Errorf("clip = %q, want ÁÉÍ", got)
	}
	if got := clip("  hola  ", 10); got != "hola" {
		t.Errorf("clip = %q, want hola", got)
	}
}
