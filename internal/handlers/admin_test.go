package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/hypervision/internal/handlers"
)

func TestAdminAPI_RequiresAuth(t *testing.T) {
	setup := newTestSetup(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/selections"},
		{http.MethodGet, "/api/admin/portal-qr"},
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodPost, "/api/admin/settings"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			rec := setup.do(t, ep.method, ep.path, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAdminAPI_RejectsStaleCookie(t *testing.T) {
	setup := newTestSetup(t)
	setup.handlers.Auth.Logout(setup.authCookie.Value)

	rec := setup.do(t, http.MethodGet, "/api/admin/selections", nil, setup.authCookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestGetSelections(t *testing.T) {
	setup := newTestSetup(t)
	for _, p := range []struct{ name, option string }{{"Ana", "optionA"}, {"Zoe", "optionB"}} {
		cookie := setup.beginSession(t, p.name)
		setup.do(t, http.MethodPost, "/api/select", map[string]string{"option_id": p.option}, cookie)
	}

	rec := setup.do(t, http.MethodGet, "/api/admin/selections", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handlers.SelectionsResponse
	decodeBody(t, rec, &resp)
	if len(resp.Selections) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(resp.Selections))
	}
	if resp.Selections[0].Participant != "Ana" || resp.Selections[1].Participant != "Zoe" {
		t.Errorf("expected recording order, got %+v", resp.Selections)
	}
	if resp.Selections[0].SelectedAt.IsZero() {
		t.Error("expected selection timestamp")
	}
	if resp.Summary.TotalSelections != 2 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
}

// ==================== Settings ====================

func TestSettings_DefaultEmpty(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/settings", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp handlers.SettingsResponse
	decodeBody(t, rec, &resp)
	if resp.BaseURL != "" || resp.PortalURL != "" {
		t.Errorf("expected empty settings, got %+v", resp)
	}
}

func TestSettings_Update(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			setup := newTestSetup(t)

			rec := setup.do(t, method, "/api/admin/settings", map[string]string{"base_url": " http://10.0.0.5:8080/ "}, setup.authCookie)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp handlers.SettingsResponse
			decodeBody(t, setup.do(t, http.MethodGet, "/api/admin/settings", nil, setup.authCookie), &resp)
			if resp.BaseURL != "http://10.0.0.5:8080" {
				t.Errorf("expected normalized base url, got %q", resp.BaseURL)
			}
			if resp.PortalURL != "http://10.0.0.5:8080/" {
				t.Errorf("expected portal url, got %q", resp.PortalURL)
			}
		})
	}
}

func TestSettings_UpdateInvalid(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPut, "/api/admin/settings", map[string]string{"base_url": "ftp://example.com"}, setup.authCookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodPut, "/api/admin/settings", "garbage", setup.authCookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSettings_StorageErrors(t *testing.T) {
	setup := newTestSetup(t)
	setup.repo.GetSettingError = errors.New("db locked")

	rec := setup.do(t, http.MethodGet, "/api/admin/settings", nil, setup.authCookie)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on read failure, got %d", rec.Code)
	}

	setup.repo.GetSettingError = nil
	setup.repo.SetSettingError = errors.New("db locked")
	rec = setup.do(t, http.MethodPut, "/api/admin/settings", map[string]string{"base_url": "http://example.com"}, setup.authCookie)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on write failure, got %d", rec.Code)
	}
}

// ==================== QR Code ====================

func TestPortalQR_RequiresBaseURL(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/portal-qr", nil, setup.authCookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without base url, got %d", rec.Code)
	}
}

func TestPortalQR_ReturnsPNG(t *testing.T) {
	setup := newTestSetup(t)
	setup.do(t, http.MethodPut, "/api/admin/settings", map[string]string{"base_url": "http://192.168.1.20:8080"}, setup.authCookie)

	rec := setup.do(t, http.MethodGet, "/api/admin/portal-qr", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}
