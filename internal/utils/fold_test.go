package utils

import "testing"

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Álamos":        "alamos",
		"CAJEME":        "cajeme",
		"Huatabampo":    "huatabampo",
		"NOGALÉS":       "nogales",
		"San Ignacio":   "san ignacio",
		"Río Muerto 2ª": "rio muerto 2a",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsLeader(t *testing.T) {
	for _, role := range []string{RolePresidente, RoleLiderEstatal, RoleLiderRegional, RoleLiderMunicipal, RoleLiderZona} {
		if !IsLeader(role) {
			t.Errorf("IsLeader(%q) = false, want true", role)
		}
	}
	for _, role := range []string{RoleAdmin, RoleCapturista, RoleCiudadano} {
		if IsLeader(role) {
			t.Errorf("IsLeader(%q) = true, want false", role)
		}
	}
}
