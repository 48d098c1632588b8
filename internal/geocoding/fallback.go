package geocoding

import (
	"context"
	_ "embed"
	"log"
	"strings"

	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/goccy/go-yaml"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type refPoint struct {
	Lat         float64 `yaml:"lat"`
	Lng         float64 `yaml:"lng"`
	Descripcion string  `yaml:"descripcion"`
}

type fallbackTable struct {
	CodigosPostales map[string]refPoint `yaml:"codigos_postales"`
	Prefijos        map[string]refPoint `yaml:"prefijos_cp"`
	Municipios      map[string]refPoint `yaml:"municipios"`
	Estados         map[string]refPoint `yaml:"estados"`
	Default         refPoint            `yaml:"default"`
}

var table fallbackTable

func init() {
	if err := yaml.Unmarshal(fallbackYAML, &table); err != nil {
		// The table ships inside the binary; failing to parse it is a build
		// defect, not a runtime condition.
		log.Fatal("geocoding: parsing embedded fallback table: ", err)
	}
}

// Fallback resolves a query against the embedded lookup table:
// postal code exact, then 3-digit postal prefix, then municipality, then
// state. Always returns a result; the last resort is the state capital.
func Fallback(q Query) *Result {
	if cp := strings.TrimSpace(q.CP); cp != "" {
		if p, ok := table.CodigosPostales[cp]; ok {
			return p.result("cp")
		}
		if len(cp) >= 3 {
			if p, ok := table.Prefijos[cp[:3]]; ok {
				return p.result("cp_prefijo")
			}
		}
	}
	if m := utils.Fold(q.Municipio); m != "" {
		if p, ok := table.Municipios[m]; ok {
			return p.result("municipio")
		}
	}
	if e := utils.Fold(q.Estado); e != "" {
		if p, ok := table.Estados[e]; ok {
			return p.result("estado")
		}
	}
	return table.Default.result("estado")
}

func (p refPoint) result(source string) *Result {
	return &Result{Lat: p.Lat, Lng: p.Lng, Formatted: p.Descripcion, Source: source}
}

// Resolve tries the external provider first and degrades to the fallback
// table. It never fails: callers always get a coordinate.
func Resolve(ctx context.Context, c *Client, q Query) *Result {
	if c != nil {
		if res, err := c.Geocode(ctx, q); err == nil {
			return res
		}
	}
	metrics.GeocodeFallbacks.Inc()
	return Fallback(q)
}
