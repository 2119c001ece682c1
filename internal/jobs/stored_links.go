package jobs

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// StoredLinksSpec refreshes the gauge every minute
const StoredLinksSpec = "* * * * *"

// LinkCounter counts stored links
type LinkCounter interface {
	CountURLs(ctx context.Context) (int64, error)
}

// RefreshStoredLinks returns a job that copies the store's link count into gauge
func RefreshStoredLinks(counter LinkCounter, gauge prometheus.Gauge) Job {
	return func(ctx context.Context) error {
		total, err := counter.CountURLs(ctx)
		if err != nil {
			return fmt.Errorf("failed to count links: %w", err)
		}
		gauge.Set(float64(total))
		return nil
	}
}
