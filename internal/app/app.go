package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/hypervision/internal/auth"
	"github.com/abrezinsky/hypervision/internal/config"
	"github.com/abrezinsky/hypervision/internal/handlers"
	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/metrics"
	"github.com/abrezinsky/hypervision/internal/models"
	"github.com/abrezinsky/hypervision/internal/registry"
	"github.com/abrezinsky/hypervision/internal/repository"
	"github.com/abrezinsky/hypervision/internal/services"
	"github.com/abrezinsky/hypervision/internal/websocket"
)

// summaryInterval is how often connected portals get a fresh summary
const summaryInterval = 15 * time.Second

// shutdownTimeout bounds how long in-flight requests may take on exit
const shutdownTimeout = 5 * time.Second

// App holds all application dependencies
type App struct {
	log       logger.Logger
	cfg       config.Config
	handlers  *handlers.Handlers
	repo      *repository.Repository
	selection *services.SelectionService
	settings  *services.SettingsService
	hub       *websocket.Hub
	stop      context.CancelFunc
	network   networkProvider
}

// New creates and initializes a new application instance. Selections already
// in the journal are replayed before the app is returned.
func New(log logger.Logger, cfg config.Config, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	reg, err := registry.New(cfg.Registry())
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(cfg.Server.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	selectionService := services.NewSelectionService(log, reg, repo)
	settingsService := services.NewSettingsService(log, repo)

	if err := selectionService.Restore(context.Background()); err != nil {
		repo.Close()
		return nil, err
	}

	// The hub and the summary ticker stop together on Close
	ctx, cancel := context.WithCancel(context.Background())

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, selectionService)
	hub.Start(ctx)
	selectionService.SetBroadcaster(hub)

	metrics.RegisterMetrics()

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		selectionService,
		settingsService,
		cfg.Portal.Title,
		templatesFS,
		staticServer,
		metrics.Handler(),
		adminAuth,
		hub,
		log,
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Periodic summaries keep idle portals in sync
	go hub.StartSummaryTicker(ctx, summaryInterval)

	return &App{
		log:       log,
		cfg:       cfg,
		handlers:  h,
		repo:      repo,
		selection: selectionService,
		settings:  settingsService,
		hub:       hub,
		stop:      cancel,
		network:   realNetworkProvider{},
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Summary returns the current selection statistics
func (a *App) Summary(ctx context.Context) models.Summary {
	return a.selection.Summary(ctx)
}

// Selections returns every recorded selection
func (a *App) Selections(ctx context.Context) []models.Selection {
	return a.selection.Selections(ctx)
}

// BaseURL returns the configured public base URL, or "" if none is set
func (a *App) BaseURL(ctx context.Context) string {
	baseURL, _ := a.settings.GetBaseURL(ctx)
	return baseURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.stop != nil {
		a.stop()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests before returning.
func (a *App) Run(ctx context.Context, addr string) error {
	baseURL := a.cfg.Server.BaseURL
	if baseURL == "" {
		// Use the detected LAN IP so phones can reach the portal
		ip := getPreferredIP(a.network)
		baseURL = fmt.Sprintf("http://%s%s", ip, addr)
	}
	a.setDefaultBaseURL(baseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin URL", "url", baseURL+"/admin")

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.log.Info("Shutting down HTTP server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.settings.GetBaseURL(ctx)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if a.cfg.Server.BaseURL != "" {
		// An explicitly configured URL always wins
		needsUpdate = existing != baseURL
	}
	if !needsUpdate {
		return
	}

	if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
		a.log.Warn("Failed to set default base_url", "error", err)
		return
	}
	a.log.Info("Default base URL set", "url", baseURL)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
