package reportes

import "testing"

func TestTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{EstadoPendiente, EstadoEnRevision},
		{EstadoPendiente, EstadoRechazado},
		{EstadoEnRevision, EstadoEnProgreso},
		{EstadoEnRevision, EstadoRechazado},
		{EstadoEnRevision, EstadoResuelto},
		{EstadoEnProgreso, EstadoResuelto},
		{EstadoEnProgreso, EstadoRechazado},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{EstadoPendiente, EstadoEnProgreso},
		{EstadoPendiente, EstadoResuelto},
		{EstadoEnProgreso, EstadoEnRevision},
		{EstadoResuelto, EstadoPendiente},
		{EstadoResuelto, EstadoRechazado},
		{EstadoRechazado, EstadoEnRevision},
		{EstadoPendiente, "inexistente"},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []string{EstadoResuelto, EstadoRechazado} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{EstadoPendiente, EstadoEnRevision, EstadoEnProgreso} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if IsTerminal("inexistente") {
		t.Error("unknown state is not terminal, it is invalid")
	}
}

func TestValidState(t *testing.T) {
	if !ValidState(EstadoEnRevision) || ValidState("otro") {
		t.Error("ValidState misclassifies")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PrioridadBaja, PrioridadNormal, PrioridadAlta, PrioridadUrgente} {
		if !ValidPriority(p) {
			t.Errorf("%s should be valid", p)
		}
	}
	if ValidPriority("extrema") {
		t.Error("unknown priority accepted")
	}
}
