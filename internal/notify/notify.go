// Package notify fans out emergency notifications to a fixed agency roster
// after each positive detection.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
	"github.com/SurjaPal/FirePredict/internal/store"
)

// roster is the fixed, ordered list of agencies notified on every positive
// detection. Order is stable so fixtures and tests are reproducible.
var roster = []string{
	"Ministry of Home Affairs",
	"NDMA (National Disaster Management Authority)",
	"NDRF (National Disaster Response Force)",
	"BIS (Bureau of Indian Standards)",
	"NBCI (National Building Code of India)",
	"Rashtriya Raksha University",
	"CISF (Central Industrial Security Force)",
	"International Maritime Organisation",
}

// Roster returns a copy of the agency roster in dispatch order.
func Roster() []string {
	out := make([]string, len(roster))
	copy(out, roster)
	return out
}

// Dispatcher attempts one delivery to one agency. An error marks that
// agency's record FAILED; it never aborts the rest of the fan-out.
type Dispatcher interface {
	Dispatch(ctx context.Context, agency, detectionID string) error
}

// Notifier runs the fan-out and records one NotificationRecord per agency.
type Notifier struct {
	store      store.Store
	dispatcher Dispatcher
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func New(st store.Store, dispatcher Dispatcher, metrics *observability.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{
		store:      st,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger.With("component", "notifier"),
	}
}

// NotifyAll attempts delivery to every roster agency concurrently and records
// the outcome per agency. Exactly one attempt per agency per call; one
// agency's failure never blocks another. The returned error reports store
// failures while recording outcomes, which are distinct from per-agency
// delivery failures (those surface as FAILED records).
func (n *Notifier) NotifyAll(ctx context.Context, detectionID string) ([]domain.NotificationRecord, error) {
	type outcome struct {
		agency string
		status domain.NotificationStatus
	}

	outcomes := make([]outcome, len(roster))
	var wg sync.WaitGroup
	for i, agency := range roster {
		wg.Add(1)
		go func(i int, agency string) {
			defer wg.Done()
			status := domain.StatusDelivered
			if err := n.dispatcher.Dispatch(ctx, agency, detectionID); err != nil {
				n.logger.Warn("notification delivery failed",
					"agency", agency,
					"detection_id", detectionID,
					"error", err,
				)
				status = domain.StatusFailed
			}
			outcomes[i] = outcome{agency: agency, status: status}
		}(i, agency)
	}
	wg.Wait()

	// Record outcomes in roster order. Delivery ran concurrently, so callers
	// must treat the result as a set keyed by agency, not an arrival order.
	records := make([]domain.NotificationRecord, 0, len(roster))
	var recordErr error
	for _, o := range outcomes {
		rec, err := n.store.CreateNotification(ctx, domain.NotificationRecord{
			DetectionID: detectionID,
			Agency:      o.agency,
			Status:      o.status,
		})
		if err != nil {
			recordErr = fmt.Errorf("record notification for %s: %w", o.agency, err)
			continue
		}
		n.metrics.Notifications.WithLabelValues(string(o.status)).Inc()
		records = append(records, rec)
	}
	return records, recordErr
}

// SimulatedDispatcher stands in for real agency channels in the demo: each
// dispatch succeeds with the configured probability.
type SimulatedDispatcher struct {
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedDispatcher creates a dispatcher that succeeds with probability
// successRate, drawing from the given source for reproducible tests.
func NewSimulatedDispatcher(successRate float64, src rand.Source) *SimulatedDispatcher {
	return &SimulatedDispatcher{
		successRate: successRate,
		rng:         rand.New(src),
	}
}

func (d *SimulatedDispatcher) Dispatch(_ context.Context, agency, _ string) error {
	d.mu.Lock()
	roll := d.rng.Float64()
	d.mu.Unlock()
	if roll >= d.successRate {
		return fmt.Errorf("simulated delivery failure to %s", agency)
	}
	return nil
}
