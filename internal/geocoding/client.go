package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result holds the coordinate a query resolved to and where it came from.
// Source is "proveedor" for the external API, otherwise the fallback tier
// ("cp", "cp_prefijo", "municipio", "estado") that produced it.
type Result struct {
	Lat       float64 `json:"latitud"`
	Lng       float64 `json:"longitud"`
	Formatted string  `json:"direccion"`
	Source    string  `json:"fuente"`
}

// Query carries the free-form address components to resolve.
type Query struct {
	Calle      string
	Colonia    string
	Municipio  string
	Estado     string
	CP         string
}

// Client wraps the external geocoding API. A nil client is valid and means
// no key was configured; Resolve then goes straight to the fallback table.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient builds the external geocoder. Returns nil when key is empty
// (graceful degradation to the fallback table).
func NewClient(key string) *Client {
	if key == "" {
		return nil
	}
	return &Client{
		apiKey: key,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocode sends the combined address to the external provider, scoped to MX.
func (c *Client) Geocode(ctx context.Context, q Query) (*Result, error) {
	parts := []string{}
	for _, p := range []string{q.Calle, q.Colonia, q.Municipio, q.Estado, q.CP} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	address := strings.Join(parts, ", ")
	if address == "" {
		return nil, fmt.Errorf("geocoding: empty address")
	}

	u := fmt.Sprintf("https://maps.googleapis.com/maps/api/geocode/json?address=%s&components=country:MX&key=%s",
		url.QueryEscape(address), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if geoResp.Status != "OK" || len(geoResp.Results) == 0 {
		return nil, fmt.Errorf("geocoding failed: status=%s", geoResp.Status)
	}

	first := geoResp.Results[0]
	return &Result{
		Lat:       first.Geometry.Location.Lat,
		Lng:       first.Geometry.Location.Lng,
		Formatted: first.FormattedAddress,
		Source:    "proveedor",
	}, nil
}
