// Command portalstat prints the live summary of a running Hypervision portal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/pkg/portal"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8081", "Portal base URL")
	watch := flag.Duration("watch", 0, "Refresh interval (0 prints once)")
	logLevel := flag.String("loglevel", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.NewWithWriter(os.Stderr, logger.ParseLevel(*logLevel), logger.FormatText)
	client := portal.NewHTTPClient(*baseURL, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client, os.Stdout, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "portalstat:", err)
		os.Exit(1)
	}
}

// run prints the summary once, or every interval until ctx is done
func run(ctx context.Context, client portal.Client, out io.Writer, interval time.Duration) error {
	if err := printSummary(ctx, client, out); err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printSummary(ctx, client, out); err != nil {
				return err
			}
		}
	}
}

func printSummary(ctx context.Context, client portal.Client, out io.Writer) error {
	summary, err := client.Summary(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s  selections=%d available=%d participants=%d\n",
		time.Now().Format("15:04:05"), summary.TotalSelections, summary.AvailableSlots, summary.DistinctParticipants)
	for _, opt := range summary.PerOption {
		fmt.Fprintf(out, "  %-10s %-28s %2d/%-2d %3d%%  %s\n", opt.ID, opt.Name, opt.Count, opt.Capacity, opt.Percentage, opt.Tier)
	}
	if summary.AllFull {
		fmt.Fprintln(out, "  registration closed")
	}
	return nil
}
