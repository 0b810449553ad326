package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/hypervision/internal/auth"
	"github.com/abrezinsky/hypervision/internal/services"
	"github.com/abrezinsky/hypervision/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index          *template.Template
	AdminLogin     *template.Template
	AdminDashboard *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Selection    services.SelectionServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          HTTPLogger
	Title        string
	templates    *Templates
	staticServer http.Handler
	metrics      http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	selection services.SelectionServicer,
	settings services.SettingsServicer,
	title string,
	templatesFS fs.FS,
	staticServer http.Handler,
	metricsHandler http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Selection:    selection,
		Settings:     settings,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		Title:        title,
		templates:    templates,
		staticServer: staticServer,
		metrics:      metricsHandler,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(selection services.SelectionServicer, settings services.SettingsServicer) *Handlers {
	return &Handlers{
		Selection: selection,
		Settings:  settings,
		Auth:      auth.New("test-password"),
		Log:       NoopHTTPLogger{},
		Title:     "UPES Hypervision",
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminDashboard, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/dashboard.html"); err != nil {
		return nil, fmt.Errorf("admin dashboard template: %w", err)
	}

	return t, nil
}
