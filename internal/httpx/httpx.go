package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"github.com/go-playground/validator/v10"
)

// Validate is the process-wide validator for request DTOs.
var Validate = validator.New()

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but count it.
		metrics.HandlerErrors.Inc()
	}
}

// Error writes a JSON error envelope {"detail": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	if status >= 500 {
		metrics.HandlerErrors.Inc()
	}
	JSON(w, status, map[string]string{"detail": msg})
}

// Decode parses the JSON body into v and runs struct validation. The
// returned error message is safe to hand to the client.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("cuerpo JSON inválido")
	}
	if err := Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("validación fallida: %s", strings.Join(fields, ", "))
		}
		return errors.New("validación fallida")
	}
	return nil
}
