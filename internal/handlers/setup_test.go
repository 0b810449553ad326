package handlers_test

import (
	"context"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/hypervision/internal/auth"
	"github.com/abrezinsky/hypervision/internal/handlers"
	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/registry"
	"github.com/abrezinsky/hypervision/internal/repository/mock"
	"github.com/abrezinsky/hypervision/internal/services"
	"github.com/abrezinsky/hypervision/internal/testutil"
)

// testSetup holds common test dependencies
type testSetup struct {
	handlers   *handlers.Handlers
	router     chi.Router
	repo       *mock.Repository
	selection  *services.SelectionService
	settings   *services.SettingsService
	authCookie *http.Cookie
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithRegistry(t, registry.DefaultConfig())
}

func newTestSetupWithRegistry(t *testing.T, cfg registry.Config) *testSetup {
	t.Helper()

	repo := mock.NewRepository(testutil.NewTestRepository(t))
	log := logger.New()

	selection := services.NewSelectionService(log, testutil.NewTestRegistryWithConfig(t, cfg), repo)
	if err := selection.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	settings := services.NewSettingsService(log, repo)

	// Initialize handlers (templates will not be used in API tests)
	h := handlers.NewForTesting(selection, settings)
	h.Log = log

	// Login to get a session cookie for authenticated requests
	token, _ := h.Auth.Login("test-password")

	return &testSetup{
		handlers:   h,
		router:     h.Router(),
		repo:       repo,
		selection:  selection,
		settings:   settings,
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":           &fstest.MapFile{Data: []byte(`<html><body><h1>{{.Title}}</h1><p>{{.Summary.AvailableSlots}} slots left</p></body></html>`)},
		"admin/login.html":     &fstest.MapFile{Data: []byte(`<html><body>Login{{if .Error}} {{.Error}}{{end}}</body></html>`)},
		"admin/layout.html":    &fstest.MapFile{Data: []byte(`{{define "admin"}}<html><body><h1>{{.PageTitle}}</h1>{{template "content" .}}</body></html>{{end}}`)},
		"admin/dashboard.html": &fstest.MapFile{Data: []byte(`{{define "content"}}<div>Total {{.Summary.TotalSelections}}</div>{{end}}`)},
	}
}

func newTestSetupWithTemplates(t *testing.T) *testSetup {
	t.Helper()

	setup := newTestSetup(t)
	h, err := handlers.New(
		setup.selection,
		setup.settings,
		"UPES Hypervision",
		createTestTemplatesFS(),
		handlers.NewStaticServer(fstest.MapFS{"css/portal.css": &fstest.MapFile{Data: []byte("body{}")}}),
		nil,
		setup.handlers.Auth,
		nil,
		handlers.NoopHTTPLogger{},
	)
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}
	setup.handlers = h
	setup.router = h.Router()
	return setup
}

// do sends a JSON request through the router
func (s *testSetup) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// beginSession starts a portal session and returns its cookie
func (s *testSetup) beginSession(t *testing.T, name string) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/session", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("begin session %q: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.ParticipantCookie {
			return c
		}
	}
	t.Fatalf("begin session %q: no participant cookie", name)
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
