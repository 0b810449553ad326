// Package browser opens portal and admin pages from the operator console.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	return cmd.Start()
}

// Opener launches pages of a running portal in the default browser
type Opener struct {
	baseURL   string
	commander Commander
	goos      string
}

// NewOpener creates an Opener for the portal served at baseURL
func NewOpener(baseURL string) *Opener {
	return NewOpenerWithCommander(baseURL, RealCommander{}, runtime.GOOS)
}

// NewOpenerWithCommander creates an Opener with a custom commander and OS (for testing)
func NewOpenerWithCommander(baseURL string, commander Commander, goos string) *Opener {
	return &Opener{
		baseURL:   strings.TrimRight(baseURL, "/"),
		commander: commander,
		goos:      goos,
	}
}

// PortalURL returns the participant-facing page
func (o *Opener) PortalURL() string {
	return o.baseURL + "/"
}

// AdminURL returns the admin dashboard
func (o *Opener) AdminURL() string {
	return o.baseURL + "/admin"
}

// OpenPortal opens the participant page
func (o *Opener) OpenPortal() error {
	return OpenWithCommander(o.PortalURL(), o.commander, o.goos)
}

// OpenAdmin opens the admin dashboard
func (o *Opener) OpenAdmin() error {
	return OpenWithCommander(o.AdminURL(), o.commander, o.goos)
}

// OpenWithCommander opens the URL using the specified commander and OS (for testing)
func OpenWithCommander(url string, commander Commander, goos string) error {
	var name string
	var args []string

	switch goos {
	case "linux", "freebsd", "openbsd":
		name = "xdg-open"
		args = []string{url}
	case "darwin":
		name = "open"
		args = []string{url}
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	if err := commander.Start(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
