package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/hypervision/internal/auth"
	"github.com/abrezinsky/hypervision/internal/handlers"
)

func TestNew_MissingTemplates(t *testing.T) {
	full := createTestTemplatesFS()

	for _, missing := range []string{"index.html", "admin/login.html", "admin/layout.html", "admin/dashboard.html"} {
		t.Run(missing, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, file := range full {
				if name != missing {
					fsys[name] = file
				}
			}

			_, err := handlers.New(nil, nil, "UPES Hypervision", fsys, nil, nil, nil, nil, handlers.NoopHTTPLogger{})
			if err == nil {
				t.Fatalf("expected error when %s is missing", missing)
			}
			if !strings.Contains(err.Error(), "failed to load templates") {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestNew_InvalidTemplate(t *testing.T) {
	fsys := createTestTemplatesFS()
	fsys["index.html"] = &fstest.MapFile{Data: []byte(`{{.Title`)}

	if _, err := handlers.New(nil, nil, "x", fsys, nil, nil, nil, nil, handlers.NoopHTTPLogger{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestIndex_RendersSummary(t *testing.T) {
	setup := newTestSetupWithTemplates(t)

	rec := setup.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "UPES Hypervision") {
		t.Errorf("expected title in page, got %q", body)
	}
	if !strings.Contains(body, "60 slots left") {
		t.Errorf("expected available slots in page, got %q", body)
	}
}

func TestStaticFiles_Served(t *testing.T) {
	setup := newTestSetupWithTemplates(t)

	rec := setup.do(t, http.MethodGet, "/static/css/portal.css", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "body{}" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestOptionalRoutes_AbsentByDefault(t *testing.T) {
	setup := newTestSetup(t)

	for _, path := range []string{"/ws", "/metrics", "/static/css/portal.css"} {
		rec := setup.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected route to be absent, got %d", path, rec.Code)
		}
	}
}

func TestMetricsRoute_Mounted(t *testing.T) {
	h, err := handlers.New(nil, nil, "x", createTestTemplatesFS(), nil,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("metrics ok")) }),
		auth.New("pw"), nil, handlers.NoopHTTPLogger{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	setup := &testSetup{router: h.Router()}
	rec := setup.do(t, http.MethodGet, "/metrics", nil)
	if rec.Body.String() != "metrics ok" {
		t.Errorf("expected metrics handler, got %d %q", rec.Code, rec.Body.String())
	}
}
