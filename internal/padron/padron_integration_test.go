package padron_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/padron"
	"github.com/google/uuid"
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

	stage, err := os.MkdirTemp("", "padron-test-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, "staging dir:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(stage)

	auth.Init()
	padron.Init(stage)

	os.Exit(m.Run())
}

func requireDB(t *testing.T) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
}

// sampleTable builds a parsed table with n unique voter keys.
func sampleTable(t *testing.T, n int) (*padron.Table, []string) {
	t.Helper()
	table := &padron.Table{
		Columns: []string{"ELECTOR", "APE_PAT", "APE_MAT", "NOMBRE", "SECCION"},
	}
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("TST%s%02d", uuid.New().String()[:12], i)
		keys = append(keys, key)
		table.Rows = append(table.Rows, []string{key, "GARCIA", "LOPEZ", fmt.Sprintf("PERSONA%d", i), "0123"})
	}
	t.Cleanup(func() {
		db.DB.Unscoped().Where("elector IN ?", keys).Delete(&padron.PadronEntry{})
	})
	return table, keys
}

func seedLeader(t *testing.T, role string) *auth.User {
	t.Helper()
	u := &auth.User{
		Nombre: "Líder Padrón " + t.Name(),
		Email:  fmt.Sprintf("padron_%s@example.mx", uuid.New().String()[:8]),
		Rol:    role,
		Activo: true,
	}
	if err := db.DB.Create(u).Error; err != nil {
		t.Fatalf("seed leader: %v", err)
	}
	t.Cleanup(func() { db.DB.Unscoped().Delete(&auth.User{}, u.ID) })
	return u
}

func TestImportRoundTrip(t *testing.T) {
	requireDB(t)
	table, keys := sampleTable(t, 3)

	first, err := padron.Import(db.DB, table, 1000)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Importados != 3 || first.Duplicados != 0 {
		t.Errorf("first import: %+v, want 3 imported 0 duplicates", first)
	}

	second, err := padron.Import(db.DB, table, 1000)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Importados != 0 || second.Duplicados != 3 {
		t.Errorf("re-import: %+v, want 0 imported 3 duplicates", second)
	}

	var count int64
	db.DB.Model(&padron.PadronEntry{}).Where("elector IN ?", keys).Count(&count)
	if count != 3 {
		t.Errorf("rows = %d, want 3", count)
	}
}

func TestImportCollectsRowErrors(t *testing.T) {
	requireDB(t)
	table, _ := sampleTable(t, 2)
	// Inject a row with an empty voter key between the valid ones.
	table.Rows = append(table.Rows[:1], append([][]string{{"", "X", "Y", "Z", "0001"}}, table.Rows[1:]...)...)

	summary, err := padron.Import(db.DB, table, 1000)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Importados != 2 {
		t.Errorf("imported = %d, want 2", summary.Importados)
	}
	if len(summary.Errores) != 1 {
		t.Fatalf("errors = %v, want exactly one", summary.Errores)
	}
	// Header is line 1, so the injected second data row is line 3.
	if summary.Errores[0].Linea != 3 {
		t.Errorf("error line = %d, want 3", summary.Errores[0].Linea)
	}
}

func TestImportMissingRequiredColumns(t *testing.T) {
	requireDB(t)
	table := &padron.Table{Columns: []string{"ELECTOR", "NOMBRE"}}
	if _, err := padron.Import(db.DB, table, 1000); err == nil {
		t.Error("import without required columns must fail")
	}
}

func TestAssignIsSingleWriter(t *testing.T) {
	requireDB(t)
	table, keys := sampleTable(t, 1)
	if _, err := padron.Import(db.DB, table, 1000); err != nil {
		t.Fatalf("import: %v", err)
	}

	var entry padron.PadronEntry
	if err := db.DB.First(&entry, "elector = ?", keys[0]).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}

	l1 := seedLeader(t, "lider_municipal")
	l2 := seedLeader(t, "lider_zona")
	admin := seedLeader(t, "admin")

	assigned, err := padron.AssignEntry(db.DB, entry.ID, l1.ID, admin.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.IDLiderAsignado == nil || *assigned.IDLiderAsignado != l1.ID {
		t.Errorf("assignment stamp: %+v", assigned)
	}
	if assigned.FechaAsignacion == nil || assigned.IDUsuarioAsignacion == nil {
		t.Errorf("missing assignment instant or principal: %+v", assigned)
	}

	// Second assign fails without mutating the original stamp.
	if _, err := padron.AssignEntry(db.DB, entry.ID, l2.ID, admin.ID); !errors.Is(err, padron.ErrAlreadyAssigned) {
		t.Fatalf("second assign err = %v, want ErrAlreadyAssigned", err)
	}
	var after padron.PadronEntry
	db.DB.First(&after, "id = ?", entry.ID)
	if after.IDLiderAsignado == nil || *after.IDLiderAsignado != l1.ID {
		t.Errorf("stamp mutated by failed assign: %+v", after)
	}

	// Release, then the second leader can take it.
	if _, err := padron.ReleaseEntry(db.DB, entry.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := padron.AssignEntry(db.DB, entry.ID, l2.ID, admin.ID); err != nil {
		t.Errorf("assign after release: %v", err)
	}
}

func TestAssignRejectsNonLeader(t *testing.T) {
	requireDB(t)
	table, keys := sampleTable(t, 1)
	if _, err := padron.Import(db.DB, table, 1000); err != nil {
		t.Fatalf("import: %v", err)
	}
	var entry padron.PadronEntry
	db.DB.First(&entry, "elector = ?", keys[0])

	citizen := seedLeader(t, "ciudadano")
	if _, err := padron.AssignEntry(db.DB, entry.ID, citizen.ID, citizen.ID); !errors.Is(err, padron.ErrLeaderNotFound) {
		t.Errorf("err = %v, want ErrLeaderNotFound", err)
	}
}

func TestVerifyElector(t *testing.T) {
	requireDB(t)
	table, keys := sampleTable(t, 1)
	if _, err := padron.Import(db.DB, table, 1000); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := padron.VerifyElector(db.DB, keys[0])
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Estado != padron.EstadoDisponible {
		t.Errorf("estado = %q, want disponible", got.Estado)
	}

	missing, err := padron.VerifyElector(db.DB, "NOEXISTE0000000000")
	if err != nil {
		t.Fatalf("verify missing: %v", err)
	}
	if missing.Estado != padron.EstadoNoEncontrado {
		t.Errorf("estado = %q, want no_encontrado", missing.Estado)
	}

	leader := seedLeader(t, "lider_municipal")
	admin := seedLeader(t, "admin")
	var entry padron.PadronEntry
	db.DB.First(&entry, "elector = ?", keys[0])
	if _, err := padron.AssignEntry(db.DB, entry.ID, leader.ID, admin.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	taken, err := padron.VerifyElector(db.DB, keys[0])
	if err != nil {
		t.Fatalf("verify taken: %v", err)
	}
	if taken.Estado != padron.EstadoYaAsignado || taken.LiderAsignado == "" || taken.FechaAsignacion == nil {
		t.Errorf("taken result: %+v", taken)
	}
}
