package reportes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
)

func decodeReport(t *testing.T, body string) (reportInput, error) {
	t.Helper()
	var input reportInput
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	err := httpx.Decode(req, &input)
	return input, err
}

func TestReportInputAcceptsZeroCoordinate(t *testing.T) {
	// A latitude of exactly 0 is a real reading, not a missing field.
	input, err := decodeReport(t,
		`{"titulo":"Bache","descripcion":"Sobre la costera","tipo":"baches_banqueta_invadida","latitud":0,"longitud":-109.44}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input.Latitud == nil || *input.Latitud != 0 {
		t.Errorf("latitud = %v, want 0", input.Latitud)
	}
}

func TestReportInputRequiresCoordinates(t *testing.T) {
	if _, err := decodeReport(t,
		`{"titulo":"Bache","descripcion":"Sin ubicación","tipo":"otro"}`); err == nil {
		t.Error("missing coordinates accepted")
	}
}

func TestReportInputRejectsOutOfRangeCoordinates(t *testing.T) {
	if _, err := decodeReport(t,
		`{"titulo":"Bache","descripcion":"x","tipo":"otro","latitud":91,"longitud":0}`); err == nil {
		t.Error("latitude above 90 accepted")
	}
}

func TestDefaultTypesMatchClientForms(t *testing.T) {
	set := make(map[string]bool, len(defaultTypes))
	for _, tipo := range defaultTypes {
		set[tipo] = true
	}
	for _, tipo := range []string{"baches_banqueta_invadida", "alumbrado_publico", "otro"} {
		if !set[tipo] {
			t.Errorf("default types missing %q", tipo)
		}
	}
}
