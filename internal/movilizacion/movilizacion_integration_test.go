package movilizacion_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/eventos"
	"github.com/ParticipaSonora/PS-Backend/internal/movilizacion"
	"github.com/ParticipaSonora/PS-Backend/internal/personas"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		os.Exit(m.Run())
	}

	db.Connect(databaseURL)
	dbAvailable = true

	if err := token.Init("integration-test-secret", "HS256", 60); err != nil {
		fmt.Fprintln(os.Stderr, "token init:", err)
		os.Exit(1)
	}

	auth.Init()
	personas.Init(nil)
	eventos.Init()
	movilizacion.Init()

	os.Exit(m.Run())
}

type fixture struct {
	leader   *auth.User
	event    *eventos.Event
	vehicle  *movilizacion.Vehicle
	personas []uint
}

// newFixture seeds a leader, an event, a vehicle with the given capacity and
// n persons, all cleaned up afterwards.
func newFixture(t *testing.T, capacity, n int) *fixture {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	leader := &auth.User{
		Nombre: "Líder Movilización",
		Email:  fmt.Sprintf("mov_%d_%d@example.mx", capacity, n) + t.Name(),
		Rol:    "lider_municipal",
		Activo: true,
	}
	if err := db.DB.Create(leader).Error; err != nil {
		t.Fatalf("seed leader: %v", err)
	}
	t.Cleanup(func() { db.DB.Unscoped().Delete(&auth.User{}, leader.ID) })

	event := &eventos.Event{
		Nombre:        "Asamblea " + t.Name(),
		Tipo:          "asamblea",
		IDOrganizador: leader.ID,
		Activo:        true,
	}
	if err := db.DB.Create(event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	t.Cleanup(func() { db.DB.Unscoped().Delete(&eventos.Event{}, event.ID) })

	vehicle := &movilizacion.Vehicle{
		Tipo:          "camioneta",
		Capacidad:     capacity,
		Placas:        "TST-001",
		IDMovilizador: leader.ID,
		Activo:        true,
	}
	if err := db.DB.Create(vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	t.Cleanup(func() { db.DB.Unscoped().Delete(&movilizacion.Vehicle{}, vehicle.ID) })

	f := &fixture{leader: leader, event: event, vehicle: vehicle}
	for i := 0; i < n; i++ {
		p := &personas.Person{
			Nombre:             fmt.Sprintf("Persona %d %s", i, t.Name()),
			IDLiderResponsable: leader.ID,
			IDUsuarioRegistro:  leader.ID,
			Activo:             true,
		}
		if err := db.DB.Create(p).Error; err != nil {
			t.Fatalf("seed person: %v", err)
		}
		id := p.ID
		t.Cleanup(func() { db.DB.Unscoped().Delete(&personas.Person{}, id) })
		f.personas = append(f.personas, id)
	}

	t.Cleanup(func() {
		db.DB.Unscoped().Where("id_evento = ?", event.ID).Delete(&movilizacion.Assignment{})
		db.DB.Unscoped().Where("id_evento = ?", event.ID).Delete(&movilizacion.Attendance{})
	})
	return f
}

func TestAssignRespectsCapacity(t *testing.T) {
	f := newFixture(t, 2, 3)

	if _, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[0]); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[1]); err != nil {
		t.Fatalf("second assign: %v", err)
	}

	_, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[2])
	if !errors.Is(err, movilizacion.ErrCapacityExceeded) {
		t.Errorf("third assign err = %v, want ErrCapacityExceeded", err)
	}

	var count int64
	db.DB.Model(&movilizacion.Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ?", f.event.ID, f.vehicle.ID).
		Count(&count)
	if count != 2 {
		t.Errorf("assignment count = %d, want 2", count)
	}
}

func TestAssignRejectsDuplicate(t *testing.T) {
	f := newFixture(t, 5, 1)

	if _, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[0]); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[0])
	if !errors.Is(err, movilizacion.ErrAlreadyAssigned) {
		t.Errorf("duplicate assign err = %v, want ErrAlreadyAssigned", err)
	}
}

func TestBulkAssignIsAtomic(t *testing.T) {
	f := newFixture(t, 2, 3)

	_, err := movilizacion.AssignBulk(db.DB, f.event.ID, f.vehicle.ID, f.personas)
	if !errors.Is(err, movilizacion.ErrCapacityExceeded) {
		t.Fatalf("bulk over capacity err = %v, want ErrCapacityExceeded", err)
	}

	// Nothing written: the batch fails as a whole.
	var count int64
	db.DB.Model(&movilizacion.Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ?", f.event.ID, f.vehicle.ID).
		Count(&count)
	if count != 0 {
		t.Errorf("assignment count after failed bulk = %d, want 0", count)
	}

	if _, err := movilizacion.AssignBulk(db.DB, f.event.ID, f.vehicle.ID, f.personas[:2]); err != nil {
		t.Fatalf("bulk within capacity: %v", err)
	}
}

func TestAssignUnknownVehicle(t *testing.T) {
	f := newFixture(t, 1, 1)

	_, err := movilizacion.Assign(db.DB, f.event.ID, 999999999, f.personas[0])
	if !errors.Is(err, movilizacion.ErrVehicleNotFound) {
		t.Errorf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestCheckInMirrorsAssignment(t *testing.T) {
	f := newFixture(t, 3, 1)

	if _, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[0]); err != nil {
		t.Fatalf("assign: %v", err)
	}

	att, err := movilizacion.CheckIn(db.DB, f.event.ID, f.personas[0], f.leader.ID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !att.Asistio || !att.Movilizado || att.FechaCheckin == nil {
		t.Errorf("attendance after check-in: %+v", att)
	}
	if att.IDUsuarioCheckin == nil || *att.IDUsuarioCheckin != f.leader.ID {
		t.Errorf("id_usuario_checkin = %v, want %d", att.IDUsuarioCheckin, f.leader.ID)
	}

	var assignment movilizacion.Assignment
	db.DB.First(&assignment, "id_evento = ? AND id_persona = ?", f.event.ID, f.personas[0])
	if !assignment.Asistio {
		t.Error("assignment asistio not mirrored to true")
	}
}

func TestCheckInCreatesAttendance(t *testing.T) {
	f := newFixture(t, 1, 1)

	// No prior attendance row; check-in creates it on the fly.
	att, err := movilizacion.CheckIn(db.DB, f.event.ID, f.personas[0], f.leader.ID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if att.ID == 0 || !att.Asistio {
		t.Errorf("attendance not created: %+v", att)
	}

	// Re-check-in refreshes the instant instead of failing.
	first := *att.FechaCheckin
	again, err := movilizacion.CheckIn(db.DB, f.event.ID, f.personas[0], f.leader.ID)
	if err != nil {
		t.Fatalf("re-check-in: %v", err)
	}
	if again.ID != att.ID {
		t.Errorf("re-check-in created a second row: %d != %d", again.ID, att.ID)
	}
	if again.FechaCheckin.Before(first) {
		t.Errorf("re-check-in did not refresh instant: %v < %v", again.FechaCheckin, first)
	}
}

func TestSetAttendedMirrorsBothWays(t *testing.T) {
	f := newFixture(t, 3, 1)

	if _, err := movilizacion.Assign(db.DB, f.event.ID, f.vehicle.ID, f.personas[0]); err != nil {
		t.Fatalf("assign: %v", err)
	}
	att, err := movilizacion.CheckIn(db.DB, f.event.ID, f.personas[0], f.leader.ID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}

	// Correction: undo the attendance, the assignment flag follows.
	updated, err := movilizacion.SetAttended(db.DB, att.ID, false, f.leader.ID)
	if err != nil {
		t.Fatalf("set attended: %v", err)
	}
	if updated.Asistio {
		t.Error("asistio still true after correction")
	}

	var assignment movilizacion.Assignment
	db.DB.First(&assignment, "id_evento = ? AND id_persona = ?", f.event.ID, f.personas[0])
	if assignment.Asistio {
		t.Error("assignment asistio not mirrored to false")
	}
}

func TestBulkAssignDeduplicatesRequest(t *testing.T) {
	f := newFixture(t, 2, 1)

	// The same person twice in one request is one seat, not a unique-index
	// violation.
	rows, err := movilizacion.AssignBulk(db.DB, f.event.ID, f.vehicle.ID,
		[]uint{f.personas[0], f.personas[0]})
	if err != nil {
		t.Fatalf("bulk with repeated person: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows created = %d, want 1", len(rows))
	}

	var count int64
	db.DB.Model(&movilizacion.Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ?", f.event.ID, f.vehicle.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("assignment count = %d, want 1", count)
	}
}

// seedCitizen inserts an active ciudadano user and returns it with a valid
// access token.
func seedCitizen(t *testing.T) (*auth.User, string) {
	t.Helper()
	citizen := &auth.User{
		Nombre: "Ciudadano " + t.Name(),
		Email:  fmt.Sprintf("ciudadano_%s@example.mx", t.Name()),
		Rol:    utils.RoleCiudadano,
		Activo: true,
	}
	if err := db.DB.Create(citizen).Error; err != nil {
		t.Fatalf("seed citizen: %v", err)
	}
	t.Cleanup(func() { db.DB.Unscoped().Delete(&auth.User{}, citizen.ID) })

	tok, err := token.Default.Access(citizen.ID, citizen.Rol)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return citizen, tok
}

func TestMobilizationRoutesRejectCiudadano(t *testing.T) {
	f := newFixture(t, 1, 1)
	_, citizenTok := seedCitizen(t)
	leaderTok, err := token.Default.Access(f.leader.ID, f.leader.Rol)
	if err != nil {
		t.Fatalf("mint leader token: %v", err)
	}

	routers := map[string]http.Handler{
		"/vehiculos":      movilizacion.SetupVehicleRoutes(),
		"/movilizaciones": movilizacion.SetupAssignmentRoutes(),
		"/asistencias":    movilizacion.SetupAttendanceRoutes(),
	}
	for name, h := range routers {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+citizenTok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s as ciudadano: status = %d, want 403", name, rec.Code)
		}

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+leaderTok)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s as leader: status = %d, want 200", name, rec.Code)
		}
	}
}

func TestAttendanceWriteEnforcesOrganizerPolicy(t *testing.T) {
	f := newFixture(t, 1, 1)
	citizen, _ := seedCitizen(t)

	body, _ := json.Marshal(map[string]interface{}{
		"id_evento":  f.event.ID,
		"id_persona": f.personas[0],
	})

	// A ciudadano who slips past the router still cannot register attendance.
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(utils.WithPrincipal(req.Context(),
		utils.Principal{ID: citizen.ID, Role: utils.RoleCiudadano}))
	rec := httptest.NewRecorder()
	movilizacion.CreateAttendanceHandler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("create as ciudadano: status = %d, want 403", rec.Code)
	}

	// The organizer may.
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(utils.WithPrincipal(req.Context(),
		utils.Principal{ID: f.leader.ID, Role: f.leader.Rol}))
	rec = httptest.NewRecorder()
	movilizacion.CreateAttendanceHandler(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create as organizer: status = %d, want 201", rec.Code)
	}
	var created movilizacion.Attendance
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created attendance: %v", err)
	}

	// Flipping asistio goes through the same gate.
	r := chi.NewRouter()
	r.Put("/{id}", movilizacion.UpdateAttendanceHandler)

	flip, _ := json.Marshal(map[string]interface{}{"asistio": true})
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/%d", created.ID), bytes.NewReader(flip))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(utils.WithPrincipal(req.Context(),
		utils.Principal{ID: citizen.ID, Role: utils.RoleCiudadano}))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("flip as ciudadano: status = %d, want 403", rec.Code)
	}

	var after movilizacion.Attendance
	db.DB.First(&after, "id = ?", created.ID)
	if after.Asistio {
		t.Error("asistio flipped despite the denied update")
	}
}

func TestUpsertPositionDenormalizes(t *testing.T) {
	f := newFixture(t, 4, 2)

	if _, err := movilizacion.AssignBulk(db.DB, f.event.ID, f.vehicle.ID, f.personas); err != nil {
		t.Fatalf("bulk assign: %v", err)
	}

	pos := movilizacion.RealTimePosition{
		IDUsuario:  f.leader.ID,
		Latitud:    27.07,
		Longitud:   -109.44,
		IDEvento:   &f.event.ID,
		IDVehiculo: &f.vehicle.ID,
	}
	if err := movilizacion.UpsertPosition(db.DB, &pos); err != nil {
		t.Fatalf("upsert position: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Unscoped().Where("id_usuario = ?", f.leader.ID).Delete(&movilizacion.RealTimePosition{})
	})

	if pos.TotalPersonas != 2 || pos.CapacidadVehiculo != 4 {
		t.Errorf("denormalized counts: total=%d cap=%d", pos.TotalPersonas, pos.CapacidadVehiculo)
	}
	if pos.NombreEvento == "" || pos.TipoVehiculo != "camioneta" {
		t.Errorf("denormalized labels: %+v", pos)
	}

	// A second report deactivates the first.
	next := movilizacion.RealTimePosition{
		IDUsuario:  f.leader.ID,
		Latitud:    27.08,
		Longitud:   -109.45,
		IDEvento:   &f.event.ID,
		IDVehiculo: &f.vehicle.ID,
	}
	if err := movilizacion.UpsertPosition(db.DB, &next); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var active int64
	db.DB.Model(&movilizacion.RealTimePosition{}).
		Where("id_usuario = ? AND activo = ?", f.leader.ID, true).
		Count(&active)
	if active != 1 {
		t.Errorf("active positions = %d, want exactly 1", active)
	}
}
