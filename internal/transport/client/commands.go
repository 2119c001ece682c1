package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joshdurbin/linktrack/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
	out    io.Writer
}

// NewCommands creates a new Commands instance printing to stdout
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
		out:    os.Stdout,
	}
}

// Shorten creates a short URL and displays the result
func (c *Commands) Shorten(ctx context.Context, longURL string, opts ShortenOptions) error {
	result, err := c.client.Shorten(ctx, longURL, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Short URL created:\n")
	fmt.Fprintf(c.out, "Short Code: %s\n", result.ShortCode)
	fmt.Fprintf(c.out, "Short URL: %s\n", result.ShortURL)
	fmt.Fprintf(c.out, "Long URL: %s\n", result.LongURL)
	fmt.Fprintf(c.out, "Created At: %s\n", result.CreatedAt.Format(time.RFC3339))
	if result.ExpiresAt != nil {
		fmt.Fprintf(c.out, "Expires At: %s\n", result.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(c.out, "Expires At: Never\n")
	}

	return nil
}

// Delete removes a short URL
func (c *Commands) Delete(ctx context.Context, shortCode string) error {
	err := c.client.DeleteURL(ctx, shortCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(c.out, "Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Fprintf(c.out, "Short URL '%s' deleted successfully\n", shortCode)
	return nil
}

// List displays one page of short URLs in a table format
func (c *Commands) List(ctx context.Context, page, limit int) error {
	result, err := c.client.ListURLs(ctx, page, limit)
	if err != nil {
		return err
	}

	if len(result.Data) == 0 {
		fmt.Fprintln(c.out, "No URLs found")
		return nil
	}

	fmt.Fprintf(c.out, "%-20s %-50s %-20s %-20s %s\n", "Short Code", "Long URL", "Created At", "Expires At", "Clicks")
	fmt.Fprintln(c.out, strings.Repeat("-", 125))

	for _, entry := range result.Data {
		expires := "Never"
		if entry.ExpiresAt != nil {
			expires = entry.ExpiresAt.Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(c.out, "%-20s %-50s %-20s %-20s %d\n",
			entry.ShortCode,
			truncate(entry.LongURL, 50),
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			expires,
			entry.ClickCount,
		)
	}

	p := result.Pagination
	fmt.Fprintf(c.out, "\nPage %d of %d (%d URLs total)\n", p.Page, p.Pages, p.Total)
	return nil
}

// Analytics displays the click report of a short URL
func (c *Commands) Analytics(ctx context.Context, shortCode string) error {
	report, err := c.client.GetAnalytics(ctx, shortCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(c.out, "Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	info := report.URLInfo
	fmt.Fprintf(c.out, "Analytics for %s\n", info.ShortCode)
	fmt.Fprintf(c.out, "Long URL: %s\n", info.LongURL)
	fmt.Fprintf(c.out, "Created At: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(c.out, "Total Clicks: %d\n", report.TotalClicks)
	fmt.Fprintf(c.out, "Unique Visitors: %d\n", report.UniqueVisitors)
	if rate, ok := ClickRate(report.TotalClicks, report.UniqueVisitors); ok {
		fmt.Fprintf(c.out, "Click Rate: %.1f%%\n", rate)
	}

	if len(report.ClicksByDay) > 0 {
		fmt.Fprintln(c.out, "\nClicks (last 7 days):")
		for _, d := range report.ClicksByDay {
			fmt.Fprintf(c.out, "  %s  %d\n", d.Date, d.Clicks)
		}
	}

	if len(report.Devices) > 0 {
		fmt.Fprintln(c.out, "\nDevices:")
		for _, d := range report.Devices {
			fmt.Fprintf(c.out, "  %-10s %d\n", d.Device, d.Count)
		}
	}

	if len(report.RecentClicks) > 0 {
		fmt.Fprintln(c.out, "\nRecent Clicks:")
		for _, rc := range report.RecentClicks {
			fmt.Fprintf(c.out, "  %s  %-15s %s\n",
				rc.ClickTime.Format("2006-01-02 15:04:05"),
				deref(rc.IPAddress),
				truncate(deref(rc.UserAgent), 60))
		}
	}

	return nil
}

// Health displays the backend status
func (c *Commands) Health(ctx context.Context) error {
	status, err := c.client.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Status: %s\n", status.Status)
	fmt.Fprintf(c.out, "Database: %s\n", status.Database)
	fmt.Fprintf(c.out, "Redis: %s\n", status.Redis)
	if status.Error != "" {
		fmt.Fprintf(c.out, "Error: %s\n", status.Error)
	}
	if status.Status != domain.StatusOK {
		return fmt.Errorf("server unhealthy: %s", status.Status)
	}
	return nil
}

// ClickRate is the share of clicks beyond one per visitor, in percent.
// It is a display figure only and is undefined without visitors.
func ClickRate(total, unique int64) (float64, bool) {
	if unique <= 0 {
		return 0, false
	}
	return (float64(total)/float64(unique) - 1) * 100, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
