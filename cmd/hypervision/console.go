package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/hypervision/internal/browser"
	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/models"
)

// summarySource supplies the statistics printed by the console
type summarySource interface {
	Summary(ctx context.Context) models.Summary
}

// console reacts to single-key commands typed into the server terminal
type console struct {
	summary summarySource
	log     *logger.SlogLogger
	opener  *browser.Opener
	quit    context.CancelFunc
	out     io.Writer
}

// handleKey runs the command bound to key. It returns false once the
// server has been asked to stop.
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "a":
		fmt.Fprintf(c.out, "%sOpening admin page in browser...%s\n", cyan, reset)
		if err := c.opener.OpenAdmin(); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "p":
		fmt.Fprintf(c.out, "%sOpening portal page in browser...%s\n", cyan, reset)
		if err := c.opener.OpenPortal(); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "s":
		c.printSummary()
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		c.cycleLogLevel()
	case "?":
		printKeyboardHelp()
	case "q", "\x03": // q or Ctrl+C
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return false
	}
	return true
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (c *console) cycleLogLevel() {
	next := logger.NextLevel(c.log.GetLevel())
	c.log.SetLevel(next)
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
}

func (c *console) printSummary() {
	s := c.summary.Summary(context.Background())

	fmt.Fprintf(c.out, "\n%s%s  Selections: %d  Slots left: %d  Participants: %d%s\n",
		bold, green, s.TotalSelections, s.AvailableSlots, s.DistinctParticipants, reset)
	for _, opt := range s.PerOption {
		color := green
		switch opt.Tier {
		case models.TierFewSlots:
			color = yellow
		case models.TierFull:
			color = red
		}
		fmt.Fprintf(c.out, "    %s%-24s%s %2d/%-2d %3d%% %s\n", cyan, opt.Name, reset, opt.Count, opt.Capacity, opt.Percentage, color+string(opt.Tier)+reset)
	}
	if s.AllFull {
		fmt.Fprintf(c.out, "  %sRegistration closed%s\n", red, reset)
	}
	fmt.Fprintln(c.out)
}
