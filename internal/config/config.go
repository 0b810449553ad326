// Package config loads portal settings from a TOML file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/abrezinsky/hypervision/internal/models"
	"github.com/abrezinsky/hypervision/internal/registry"
)

// Server holds process-level settings
type Server struct {
	Port          int
	DBPath        string
	AdminPassword string
	LogLevel      string
	LogFormat     string
	BaseURL       string
}

// Portal holds the selection rules and option set
type Portal struct {
	Title         string
	Capacity      int
	FewSlotsAt    int
	MinNameLength int
	Options       []models.Option
}

// Config is the full application configuration
type Config struct {
	Server Server
	Portal Portal
}

// Default returns the reference configuration. The journal defaults to an
// in-memory database so nothing survives a restart unless a path is given.
func Default() Config {
	reg := registry.DefaultConfig()
	return Config{
		Server: Server{
			Port:      8081,
			DBPath:    ":memory:",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Portal: Portal{
			Title:         "UPES Hypervision",
			Capacity:      reg.Capacity,
			FewSlotsAt:    reg.FewSlotsAt,
			MinNameLength: reg.MinNameLength,
			Options:       reg.Options,
		},
	}
}

type fileOption struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type fileServer struct {
	Port          int    `toml:"port"`
	DBPath        string `toml:"db"`
	AdminPassword string `toml:"admin_password"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	BaseURL       string `toml:"base_url"`
}

type filePortal struct {
	Title         string       `toml:"title"`
	Capacity      int          `toml:"capacity"`
	FewSlotsAt    int          `toml:"few_slots_at"`
	MinNameLength int          `toml:"min_name_length"`
	Options       []fileOption `toml:"options"`
}

type fileConfig struct {
	Server fileServer `toml:"server"`
	Portal filePortal `toml:"portal"`
}

// Load reads path and overlays every defined key on top of Default()
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config: unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("server", "port") {
		cfg.Server.Port = raw.Server.Port
	}
	if meta.IsDefined("server", "db") {
		cfg.Server.DBPath = strings.TrimSpace(raw.Server.DBPath)
	}
	if meta.IsDefined("server", "admin_password") {
		cfg.Server.AdminPassword = raw.Server.AdminPassword
	}
	if meta.IsDefined("server", "log_level") {
		cfg.Server.LogLevel = strings.TrimSpace(raw.Server.LogLevel)
	}
	if meta.IsDefined("server", "log_format") {
		cfg.Server.LogFormat = strings.ToLower(strings.TrimSpace(raw.Server.LogFormat))
	}
	if meta.IsDefined("server", "base_url") {
		cfg.Server.BaseURL = strings.TrimSuffix(strings.TrimSpace(raw.Server.BaseURL), "/")
	}

	if meta.IsDefined("portal", "title") {
		cfg.Portal.Title = strings.TrimSpace(raw.Portal.Title)
	}
	if meta.IsDefined("portal", "capacity") {
		cfg.Portal.Capacity = raw.Portal.Capacity
	}
	if meta.IsDefined("portal", "few_slots_at") {
		cfg.Portal.FewSlotsAt = raw.Portal.FewSlotsAt
	}
	if meta.IsDefined("portal", "min_name_length") {
		cfg.Portal.MinNameLength = raw.Portal.MinNameLength
	}
	if meta.IsDefined("portal", "options") {
		cfg.Portal.Options = normalizeOptions(raw.Portal.Options)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalizeOptions(in []fileOption) []models.Option {
	out := make([]models.Option, 0, len(in))
	for _, o := range in {
		id := strings.TrimSpace(o.ID)
		name := strings.TrimSpace(o.Name)
		if name == "" {
			name = id
		}
		out = append(out, models.Option{ID: models.OptionID(id), Name: name})
	}
	return out
}

// Registry converts the portal section into registry settings
func (c Config) Registry() registry.Config {
	return registry.Config{
		Options:       c.Portal.Options,
		Capacity:      c.Portal.Capacity,
		FewSlotsAt:    c.Portal.FewSlotsAt,
		MinNameLength: c.Portal.MinNameLength,
	}
}

// Validate checks server and portal settings
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.DBPath == "" {
		return fmt.Errorf("db path must not be empty (use :memory: for a volatile journal)")
	}
	switch c.Server.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.Server.LogFormat)
	}
	if err := c.Registry().Validate(); err != nil {
		return fmt.Errorf("portal: %w", err)
	}
	return nil
}
