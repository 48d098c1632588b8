package metrics

import (
	"net/http"
	"strconv"
	"strings"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by top-level route prefix and status class.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "/"
		if parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2); parts[0] != "" {
			route = "/" + parts[0]
		}
		class := strconv.Itoa(rec.status/100) + "xx"
		RequestsTotal.WithLabelValues(route, class).Inc()
	})
}
