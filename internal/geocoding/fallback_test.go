package geocoding

import (
	"context"
	"os"
	"testing"
)

func TestFallbackTiers(t *testing.T) {
	tests := []struct {
		name       string
		q          Query
		wantSource string
		wantDesc   string
	}{
		{
			name:       "exact postal code wins",
			q:          Query{CP: "85800", Municipio: "Cajeme"},
			wantSource: "cp",
			wantDesc:   "Navojoa Centro",
		},
		{
			name:       "postal prefix when exact misses",
			q:          Query{CP: "85811"},
			wantSource: "cp_prefijo",
			wantDesc:   "Zona Navojoa",
		},
		{
			name:       "municipality with accents",
			q:          Query{Municipio: "Álamos"},
			wantSource: "municipio",
			wantDesc:   "Álamos, Sonora",
		},
		{
			name:       "state tier",
			q:          Query{Estado: "Sinaloa"},
			wantSource: "estado",
		},
		{
			name:       "nothing matches still resolves",
			q:          Query{Calle: "Calle Sin Nombre 123"},
			wantSource: "estado",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Fallback(tc.q)
			if got == nil {
				t.Fatal("Fallback returned nil")
			}
			if got.Source != tc.wantSource {
				t.Errorf("source = %q, want %q", got.Source, tc.wantSource)
			}
			if tc.wantDesc != "" && got.Formatted != tc.wantDesc {
				t.Errorf("formatted = %q, want %q", got.Formatted, tc.wantDesc)
			}
			if got.Lat == 0 || got.Lng == 0 {
				t.Errorf("zero coordinate: %+v", got)
			}
		})
	}
}

func TestResolveWithoutClientUsesFallback(t *testing.T) {
	res := Resolve(context.Background(), nil, Query{CP: "85000"})
	if res.Source != "cp" {
		t.Errorf("source = %q, want cp", res.Source)
	}
}

func TestGeocodeExternal(t *testing.T) {
	// Requires a live key; skipped in CI.
	key := os.Getenv("GEOCODING_API_KEY")
	if key == "" {
		t.Skip("GEOCODING_API_KEY not set")
	}

	client := NewClient(key)
	res, err := client.Geocode(context.Background(), Query{
		Municipio: "Navojoa", Estado: "Sonora",
	})
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if res.Lat == 0 || res.Lng == 0 {
		t.Errorf("zero coordinate: %+v", res)
	}
}
