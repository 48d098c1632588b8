package reportes

// Report lifecycle. resuelto and rechazado are terminal.
const (
	EstadoPendiente  = "pendiente"
	EstadoEnRevision = "en_revision"
	EstadoEnProgreso = "en_progreso"
	EstadoResuelto   = "resuelto"
	EstadoRechazado  = "rechazado"
)

const (
	PrioridadBaja    = "baja"
	PrioridadNormal  = "normal"
	PrioridadAlta    = "alta"
	PrioridadUrgente = "urgente"
)

// transitions is the whole state machine as data.
var transitions = map[string][]string{
	EstadoPendiente:  {EstadoEnRevision, EstadoRechazado},
	EstadoEnRevision: {EstadoEnProgreso, EstadoRechazado, EstadoResuelto},
	EstadoEnProgreso: {EstadoResuelto, EstadoRechazado},
	EstadoResuelto:   {},
	EstadoRechazado:  {},
}

func ValidState(s string) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PrioridadBaja, PrioridadNormal, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}
