package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

// Sink publish retry policy: start at 200ms, double each retry, cap at 5s.
const (
	sinkAttempts       = 4
	sinkInitialBackoff = 200 * time.Millisecond
	sinkMaxBackoff     = 5 * time.Second
)

// publish hands placed markers to the sink, retrying with exponential backoff.
// Sink failures never change the population tally.
func (p *Populator) publish(ctx context.Context, markers []domain.Marker) {
	backoff := sinkInitialBackoff
	for attempt := 1; attempt <= sinkAttempts; attempt++ {
		err := p.sink.LoadBatch(ctx, markers)
		if err == nil {
			p.metrics.SinkPublished.Add(float64(len(markers)))
			return
		}
		p.metrics.SinkErrors.Inc()
		p.logger.Error("publish markers failed", "error", err, "attempt", attempt, "batch_size", len(markers))

		if attempt == sinkAttempts || ctx.Err() != nil {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, sinkMaxBackoff)
	}
	p.logger.Warn("markers not published", "batch_size", len(markers))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
