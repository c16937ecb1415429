package server

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/ProfileSeller/internal/config"
	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/handlers"
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stubs embed the handler interfaces; methods a test doesn't override panic.

type stubUsers struct {
	handlers.UserService
	statsCalls int
}

func (s *stubUsers) Stats(context.Context) (services.UserStats, error) {
	s.statsCalls++
	return services.UserStats{Total: 3}, nil
}

func (s *stubUsers) Update(_ context.Context, id primitive.ObjectID, _ services.UserUpdate) (models.User, error) {
	return models.User{ID: id, Name: "Ann"}, nil
}

func (s *stubUsers) List(_ context.Context, _ services.UserFilter, p services.Page) ([]models.User, services.Pagination, error) {
	return []models.User{}, services.NewPagination(p, 0), nil
}

type stubProfiles struct {
	handlers.ProfileService
}

func (stubProfiles) List(context.Context, services.ProfileFilter, services.Page) ([]models.Profile, services.Pagination, error) {
	panic("boom")
}

type stubDatabase struct{}

func (stubDatabase) Name() string { return "profile_seller" }

func (stubDatabase) Collections(context.Context) ([]db.CollectionInfo, error) {
	return []db.CollectionInfo{{Name: "users"}}, nil
}

func (stubDatabase) Stats(context.Context) (db.Stats, error) {
	return db.Stats{DB: "profile_seller"}, nil
}

func (stubDatabase) SmokeTest(context.Context) (db.SmokeResult, error) {
	return db.SmokeResult{}, nil
}

func testConfig() config.Config {
	return config.Config{
		Env:        "test",
		Port:       "3000",
		CORSOrigin: "http://localhost:5173",
	}
}

func newTestServer(cfg config.Config, users *stubUsers, tokens *services.Tokens) *fiber.App {
	return New(cfg, Dependencies{
		Users:    users,
		Profiles: stubProfiles{},
		Database: stubDatabase{},
		Tokens:   tokens,
	}, zerolog.Nop())
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestUnknownRoute(t *testing.T) {
	app := newTestServer(testConfig(), &stubUsers{}, services.NewTokens("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status %d, want 404", resp.StatusCode)
	}
	body := decode(t, resp.Body)
	if body["error"] != "Endpoint not found" || body["path"] != "/api/nope" || body["method"] != "GET" {
		t.Errorf("body = %v", body)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Error("request id header missing")
	}
}

func TestStatsRouteBeatsIDRoute(t *testing.T) {
	users := &stubUsers{}
	app := newTestServer(testConfig(), users, services.NewTokens("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/stats/overview", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK || users.statsCalls != 1 {
		t.Fatalf("status %d, stats calls %d", resp.StatusCode, users.statsCalls)
	}
}

func TestAdminGate(t *testing.T) {
	tokens := services.NewTokens("secret", time.Hour)
	userToken, _ := tokens.Issue(models.User{ID: primitive.NewObjectID(), Role: models.RoleUser})
	adminToken, _ := tokens.Issue(models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	target := "/api/users/" + primitive.NewObjectID().Hex()

	put := func(app *fiber.App, token string) int {
		t.Helper()
		req := httptest.NewRequest("PUT", target, strings.NewReader(`{"name":"Ann"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode
	}

	open := newTestServer(testConfig(), &stubUsers{}, tokens)
	if status := put(open, ""); status != fiber.StatusOK {
		t.Errorf("gate off: status %d, want 200", status)
	}

	cfg := testConfig()
	cfg.EnforceAdmin = true
	gated := newTestServer(cfg, &stubUsers{}, tokens)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", fiber.StatusUnauthorized},
		{"user", userToken, fiber.StatusForbidden},
		{"admin", adminToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		if status := put(gated, tt.token); status != tt.status {
			t.Errorf("gate on, %s: status %d, want %d", tt.name, status, tt.status)
		}
	}

	resp, err := gated.Test(httptest.NewRequest("GET", "/api/users", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("listing users stays open: status %d", resp.StatusCode)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	app := newTestServer(testConfig(), &stubUsers{}, services.NewTokens("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/profiles", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status %d, want 500", resp.StatusCode)
	}
	if body := decode(t, resp.Body); body["error"] != "Internal Server Error" {
		t.Errorf("body = %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	app := newTestServer(testConfig(), &stubUsers{}, services.NewTokens("secret", time.Hour))

	req := httptest.NewRequest("OPTIONS", "/api/profiles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestHealthRoute(t *testing.T) {
	app := newTestServer(testConfig(), &stubUsers{}, services.NewTokens("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if body := decode(t, resp.Body); resp.StatusCode != fiber.StatusOK || body["status"] != "OK" {
		t.Errorf("health: %d %v", resp.StatusCode, body)
	}
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shop</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.StaticDir = dir
	app := newTestServer(cfg, &stubUsers{}, services.NewTokens("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	page, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(page), "shop") {
		t.Errorf("index: %d %q", resp.StatusCode, page)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown api route with static dir: status %d, want 404", resp.StatusCode)
	}
}
