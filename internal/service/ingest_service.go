package service

import (
	"context"
	"fmt"
	"log"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"
)

// IngestService is the single entry point for identity lifecycle events,
// whether they arrive over the webhook endpoint or the message bus.
// Delivery is at-least-once and unordered, so it validates, deduplicates by
// provider event id, and dispatches to the lifecycle manager.
type IngestService struct {
	lifecycle *LifecycleService
	ledger    EventLedger
}

func NewIngestService(lifecycle *LifecycleService, ledger EventLedger) *IngestService {
	return &IngestService{
		lifecycle: lifecycle,
		ledger:    ledger,
	}
}

// Ingest runs one event to completion. A rejected outcome means the event is
// malformed and must not be redelivered; an error means the delivery should
// be retried by the provider.
//
// The ledger is written strictly after the effect. If the effect lands and
// the ledger write fails, the redelivery re-runs an operation that is
// idempotent by design, so nothing is double-applied.
func (s *IngestService) Ingest(ctx context.Context, evt *models.LifecycleEvent) (*Outcome, error) {
	if reason := validate(evt); reason != "" {
		return &Outcome{Status: OutcomeRejected, Reason: reason}, nil
	}

	applied, err := s.ledger.IsApplied(ctx, evt.EventID)
	if err != nil {
		return nil, apperror.StorageUnavailable("ledger.isApplied", err)
	}
	if applied {
		return &Outcome{Status: OutcomeApplied, Duplicate: true}, nil
	}

	var outcome *Outcome
	switch evt.Type {
	case models.EventUserCreated:
		outcome, err = s.lifecycle.OnUserCreated(ctx, evt)
	case models.EventUserUpdated:
		outcome, err = s.lifecycle.OnUserUpdated(ctx, evt)
	case models.EventUserDeleted:
		outcome, err = s.lifecycle.OnUserDeleted(ctx, evt.Data.ID)
	}
	if err != nil {
		return nil, err
	}

	if lerr := s.ledger.MarkApplied(ctx, evt.EventID); lerr != nil {
		// The effect already happened; a redelivery is absorbed by the
		// idempotent lifecycle operations.
		log.Printf("failed to record applied event %s: %v", evt.EventID, lerr)
	}

	return outcome, nil
}

func validate(evt *models.LifecycleEvent) string {
	if evt.EventID == "" {
		return "missing event id"
	}
	if !evt.Type.Known() {
		return fmt.Sprintf("unrecognized event type %q", evt.Type)
	}
	if evt.Data.ID == "" {
		return "missing external user id"
	}
	return ""
}
