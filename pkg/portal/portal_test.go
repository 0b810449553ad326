package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abrezinsky/hypervision/internal/handlers"
	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/services"
	"github.com/abrezinsky/hypervision/internal/testutil"
)

// noopLogger implements logger.Logger but discards all output
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any) {}
func (noopLogger) Error(msg string, args ...any) {}
func (noopLogger) SetLevel(level slog.Level) {}
func (noopLogger) GetLevel() slog.Level { return slog.LevelInfo }
func (noopLogger) EnableHTTPLogging() {}
func (noopLogger) DisableHTTPLogging() {}
func (noopLogger) IsHTTPLoggingEnabled() bool { return false }

var _ logger.Logger = noopLogger{}

// newPortalServer runs the real portal API on an httptest server
func newPortalServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	selection := services.NewSelectionService(noopLogger{}, testutil.NewTestRegistry(t), repo)
	if err := selection.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	settings := services.NewSettingsService(noopLogger{}, repo)

	server := httptest.NewServer(handlers.NewForTesting(selection, settings).Router())
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClient_SessionAndSelect(t *testing.T) {
	server := newPortalServer(t)
	client := NewHTTPClient(server.URL+"/", noopLogger{})
	ctx := context.Background()

	if client.BaseURL() != server.URL {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL())
	}

	session, err := client.BeginSession(ctx, "  Ana  ")
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	if session.Participant != "Ana" || session.AlreadySelected {
		t.Errorf("unexpected session %+v", session)
	}

	result, err := client.Select(ctx, "optionB")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if result.OptionID != "optionB" || result.Count != 1 || result.Summary.AvailableSlots != 59 {
		t.Errorf("unexpected result %+v", result)
	}

	_, err = client.Select(ctx, "optionA")
	if !IsCode(err, CodeAlreadySelected) {
		t.Errorf("expected %s, got %v", CodeAlreadySelected, err)
	}

	again, err := client.BeginSession(ctx, "Ana")
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	if !again.AlreadySelected || again.OptionID != "optionB" {
		t.Errorf("expected returning participant view, got %+v", again)
	}
}

func TestHTTPClient_ErrorCodes(t *testing.T) {
	server := newPortalServer(t)
	ctx := context.Background()

	fresh := NewHTTPClient(server.URL, noopLogger{})
	if _, err := fresh.Select(ctx, "optionA"); !IsCode(err, CodeNoSession) {
		t.Errorf("expected %s without session, got %v", CodeNoSession, err)
	}

	if _, err := fresh.BeginSession(ctx, "A"); !IsCode(err, CodeValidation) {
		t.Errorf("expected %s for short name, got %v", CodeValidation, err)
	}

	if _, err := fresh.OptionStatus(ctx, "optionZ"); !IsCode(err, CodeUnknownOption) {
		t.Errorf("expected %s, got %v", CodeUnknownOption, err)
	}
}

func TestHTTPClient_Statistics(t *testing.T) {
	server := newPortalServer(t)
	client := NewHTTPClient(server.URL, noopLogger{})
	ctx := context.Background()

	summary, err := client.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.AvailableSlots != 60 || len(summary.PerOption) != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}

	status, err := client.OptionStatus(ctx, "optionC")
	if err != nil {
		t.Fatalf("OptionStatus failed: %v", err)
	}
	if status.Capacity != 20 || status.Name != "Problem Statement C" {
		t.Errorf("unexpected status %+v", status)
	}

	open, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if open.AllFull {
		t.Error("expected registration to be open")
	}
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.Summary(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if _, err := client.Status(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClientWithHTTPClient(url, http.DefaultClient, noopLogger{})
	if _, err := client.Summary(context.Background()); err == nil {
		t.Error("expected connection error")
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := newPortalServer(t)
	client := NewHTTPClient(server.URL, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Summary(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAPIError_Error(t *testing.T) {
	withCode := &APIError{Status: 409, Code: CodeOptionFull, Message: "full"}
	if withCode.Error() != "portal error OPTION_FULL (409): full" {
		t.Errorf("unexpected message %q", withCode.Error())
	}
	bare := &APIError{Status: 500, Message: "boom"}
	if bare.Error() != "portal returned status 500: boom" {
		t.Errorf("unexpected message %q", bare.Error())
	}
	if IsCode(errors.New("plain"), CodeOptionFull) {
		t.Error("plain errors carry no code")
	}
}
