package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/hypervision/internal/app"
	"github.com/abrezinsky/hypervision/internal/auth"
	"github.com/abrezinsky/hypervision/internal/browser"
	"github.com/abrezinsky/hypervision/internal/config"
	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/web"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	blue      = "\033[34m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

var (
	version = "dev"
)

// showStartupBanner displays the Hypervision logo, optionally followed by
// three slot meters filling up.
func showStartupBanner(skipAnimation bool) {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"   _   _                        __     ___     _              ",
		"  | | | |_   _ _ __   ___ _ __  \\ \\   / (_)___(_) ___  _ __   ",
		"  | |_| | | | | '_ \\ / _ \\ '__|  \\ \\ / /| / __| |/ _ \\| '_ \\  ",
		"  |  _  | |_| | |_) |  __/ |      \\ V / | \\__ \\ | (_) | | | | ",
		"  |_| |_|\\__, | .__/ \\___|_|       \\_/  |_|___/_|\\___/|_| |_| ",
		"         |___/|_|                                             ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len(line) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipAnimation {
		fmt.Print("\n")
		return
	}

	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)

	meters := []struct {
		label string
		color string
	}{
		{"A", green},
		{"B", blue},
		{"C", red},
	}

	barLen := width - 12
	for range meters {
		fmt.Printf("  %s║%s║%s\n", cyan, strings.Repeat(" ", width), reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)
	fmt.Printf(moveUp, 4)

	frames := 20
	for frame := 1; frame <= frames; frame++ {
		for i, m := range meters {
			// Each meter fills at its own pace and stops at its share
			fill := barLen * frame * (3 - i) / (frames * 3)
			bar := strings.Repeat("█", fill) + strings.Repeat("░", barLen-fill)
			line := fmt.Sprintf("  %s %s%s%s", m.label, m.color, bar, reset)
			pad := width - 4 - barLen
			fmt.Printf("%s  %s║%s%s%s║%s\n", clearLine, cyan, line, strings.Repeat(" ", pad), cyan, reset)
		}
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		if frame < frames {
			fmt.Printf(moveUp, 4)
		}
		time.Sleep(40 * time.Millisecond)
	}
	fmt.Print("\n")
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open admin page in browser\n", cyan, reset)
	fmt.Printf("    %sp%s      - Open portal page in browser\n", cyan, reset)
	fmt.Printf("    %ss%s      - Print selection summary\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	port := flag.Int("port", 8081, "HTTP server port")
	dbPath := flag.String("db", ":memory:", "SQLite journal path")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("logformat", "text", "Log format (text, json)")
	baseURL := flag.String("baseurl", "", "Public base URL for the portal QR code")
	noAnimate := flag.Bool("noanimate", false, "Show logo only, skip animation")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Hypervision - Problem Statement Selection Portal

Usage:
  hypervision [options]

Options:
  -config str    TOML config file (flags override file values)
  -port int      HTTP server port (default 8081)
  -db string     SQLite journal path (default ":memory:", nothing survives a restart)
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -logformat str Log format: text, json (default "text")
  -baseurl str   Public base URL for the portal QR code
  -noanimate     Show logo only, skip animation
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Keyboard Shortcuts (when enabled):
  a              Open admin page in browser
  p              Open portal page in browser
  s              Print selection summary
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  hypervision                              # In-memory journal on port 8081
  hypervision -db hypervision.db           # Keep selections across restarts
  hypervision -config hypervision.toml     # Options and capacity from a file
  hypervision -port 80 -db prod.db         # Production example

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("hypervision %s\n", version)
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	// Flags given explicitly override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "db":
			cfg.Server.DBPath = *dbPath
		case "adminpw":
			cfg.Server.AdminPassword = *adminPw
		case "loglevel":
			cfg.Server.LogLevel = *logLevel
		case "logformat":
			cfg.Server.LogFormat = *logFormat
		case "baseurl":
			cfg.Server.BaseURL = strings.TrimSuffix(*baseURL, "/")
		}
	})

	showStartupBanner(*noAnimate)

	// Setup admin authentication
	password := cfg.Server.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.Server.LogLevel), logger.ParseFormat(cfg.Server.LogFormat))

	a, err := app.New(appLog, cfg, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	if cfg.Server.DBPath == ":memory:" {
		appLog.Warn("Journal is in memory, selections will be lost on restart", "hint", "use -db to persist")
	}
	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(ctx, addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	localURL := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	c := &console{
		summary: a,
		log:     appLog,
		opener:  browser.NewOpener(localURL),
		quit:    stop,
		out:     os.Stdout,
	}

	if !*noKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(c)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	if err := <-serverErr; err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%sServer stopped%s\n", yellow, reset)
}
