package monitoring

import (
	"context"

	"task-tracker/backend/internal/engine"
)

// CountingSink counts link events before forwarding them to the next
// sink, so correction volume and failure rate show up in /metrics.
type CountingSink struct {
	next engine.AuditSink
}

func NewCountingSink(next engine.AuditSink) *CountingSink {
	return &CountingSink{next: next}
}

func (s *CountingSink) Record(ctx context.Context, event engine.LinkEvent) error {
	RecordLinkCorrection(event.Failed)
	if s.next != nil {
		return s.next.Record(ctx, event)
	}
	return nil
}
