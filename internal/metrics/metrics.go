package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ps_http_requests_total",
		Help: "HTTP requests served, by route prefix and status class.",
	}, []string{"route", "class"})

	HandlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_handler_errors_total",
		Help: "Requests that ended in a 5xx response.",
	})

	PadronRowsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_padron_rows_imported_total",
		Help: "Electoral-roll rows inserted by the importer.",
	})

	PadronRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_padron_rows_skipped_total",
		Help: "Electoral-roll rows skipped as duplicates.",
	})

	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_checkins_total",
		Help: "Event check-ins performed.",
	})

	CitizenReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_citizen_reports_total",
		Help: "Citizen reports accepted.",
	})

	GeocodeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_geocode_fallbacks_total",
		Help: "Geocoding requests resolved by the local fallback table.",
	})
)
