package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

var testServer *httptest.Server

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	db.Connect(databaseURL)
	dbAvailable = true

	if err := token.Init("integration-test-secret", "HS256", 60); err != nil {
		fmt.Fprintln(os.Stderr, "token init:", err)
		os.Exit(1)
	}

	auth.Init()

	// Same layout as the server: the credential and user surfaces resolve
	// both under /auth and at the root.
	r := chi.NewRouter()
	r.Mount("/auth", auth.SetupRoutes())
	r.Post("/login", auth.LoginHandler)
	r.Post("/token", auth.TokenHandler)
	r.Mount("/users", auth.SetupUserRoutes())
	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// createTestUser inserts a unique active user and registers cleanup.
func createTestUser(t *testing.T, role string, superior *uint) *auth.User {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	password := "TestPass123!"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	user := auth.User{
		Nombre:         "Test " + role,
		Email:          fmt.Sprintf("test_%s@example.mx", uuid.New().String()[:8]),
		HashedPassword: string(hashed),
		Rol:            role,
		IDSuperior:     superior,
		Activo:         true,
	}
	user.Password = password
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Unscoped().Where("id = ?", user.ID).Delete(&auth.User{})
	})
	return &user
}

func TestLoginIssuesToken(t *testing.T) {
	u := createTestUser(t, "lider_municipal", nil)

	body, _ := json.Marshal(map[string]string{
		"identificador": u.Email,
		"password":      u.Password,
	})
	resp, err := http.Post(testServer.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if out.TokenType != "bearer" || out.AccessToken == "" {
		t.Errorf("unexpected token response: %+v", out)
	}

	claims, err := token.Default.Parse(out.AccessToken, token.TypAccess)
	if err != nil {
		t.Fatalf("parsing issued token: %v", err)
	}
	id, _ := claims.SubjectID()
	if id != u.ID {
		t.Errorf("subject = %d, want %d", id, u.ID)
	}
}

func TestRootPathAliases(t *testing.T) {
	u := createTestUser(t, "capturista", nil)

	body, _ := json.Marshal(map[string]string{
		"identificador": u.Email,
		"password":      u.Password,
	})
	resp, err := http.Post(testServer.URL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("root login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /login status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, testServer.URL+"/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+out.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("root /users/me request: %v", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Errorf("GET /users/me status = %d, want 200", meResp.StatusCode)
	}
}

func TestLoginRejectsInactive(t *testing.T) {
	u := createTestUser(t, "capturista", nil)
	db.DB.Model(&auth.User{}).Where("id = ?", u.ID).Update("activo", false)

	body, _ := json.Marshal(map[string]string{
		"identificador": u.Email,
		"password":      u.Password,
	})
	resp, err := http.Post(testServer.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestDescendantsWalksTree(t *testing.T) {
	root := createTestUser(t, "presidente", nil)
	mid := createTestUser(t, "lider_municipal", &root.ID)
	leaf := createTestUser(t, "lider_zona", &mid.ID)
	other := createTestUser(t, "lider_zona", nil)

	ids := auth.Descendants(db.DB, root.ID)
	set := map[uint]bool{}
	for _, id := range ids {
		set[id] = true
	}
	if !set[root.ID] || !set[mid.ID] || !set[leaf.ID] {
		t.Errorf("descendants %v missing tree members (%d, %d, %d)", ids, root.ID, mid.ID, leaf.ID)
	}
	if set[other.ID] {
		t.Errorf("descendants %v include unrelated user %d", ids, other.ID)
	}

	// Unknown id behaves as a leaf.
	got := auth.Descendants(db.DB, 999999999)
	if len(got) != 1 || got[0] != 999999999 {
		t.Errorf("unknown id: %v, want singleton", got)
	}
}

func TestCanAssignLeaderSubtree(t *testing.T) {
	root := createTestUser(t, "lider_regional", nil)
	child := createTestUser(t, "lider_zona", &root.ID)
	outsider := createTestUser(t, "lider_zona", nil)

	p := utils.Principal{ID: root.ID, Role: root.Rol}
	if !auth.CanAssignLeader(p, child.ID) {
		t.Error("leader denied assigning within own subtree")
	}
	if !auth.CanAssignLeader(p, root.ID) {
		t.Error("leader denied assigning to themselves")
	}
	if auth.CanAssignLeader(p, outsider.ID) {
		t.Error("leader allowed assigning outside own subtree")
	}

	capturista := utils.Principal{ID: child.ID, Role: "capturista"}
	if auth.CanAssignLeader(capturista, root.ID) {
		t.Error("capturista allowed assigning upward")
	}
}

func TestDescendantsSurvivesCycle(t *testing.T) {
	a := createTestUser(t, "lider_regional", nil)
	b := createTestUser(t, "lider_municipal", &a.ID)
	// Corrupt the relation into a cycle.
	db.DB.Model(&auth.User{}).Where("id = ?", a.ID).Update("id_superior", b.ID)

	ids := auth.Descendants(db.DB, a.ID)
	if len(ids) != 2 {
		t.Errorf("cycle walk returned %v, want both nodes exactly once", ids)
	}
}

func TestInactiveExcludedFromDescendants(t *testing.T) {
	root := createTestUser(t, "lider_estatal", nil)
	child := createTestUser(t, "lider_zona", &root.ID)
	db.DB.Model(&auth.User{}).Where("id = ?", child.ID).Update("activo", false)

	for _, id := range auth.Descendants(db.DB, root.ID) {
		if id == child.ID {
			t.Errorf("inactive user %d still in descendants", child.ID)
		}
	}
}
