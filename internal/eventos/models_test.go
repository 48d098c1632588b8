package eventos

import (
	"testing"
	"time"
)

func TestEsHistorico(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	upcoming := Event{Fecha: now.Add(48 * time.Hour)}
	if upcoming.EsHistorico(now) {
		t.Error("upcoming event marked historical")
	}

	recent := Event{Fecha: now.Add(-23 * time.Hour)}
	if recent.EsHistorico(now) {
		t.Error("event within 24h grace marked historical")
	}

	old := Event{Fecha: now.Add(-25 * time.Hour)}
	if !old.EsHistorico(now) {
		t.Error("day-old event not marked historical")
	}
}
