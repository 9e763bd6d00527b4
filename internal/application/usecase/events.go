package usecase

import (
	"context"
	"log/slog"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/pkg/events"
)

// eventToPublish defers publication until the owning transaction commits.
type eventToPublish struct {
	e events.DomainEvent
}

// publishAll sends accumulated events post-commit. Publish failures are
// logged, not propagated: the committed state is authoritative.
func publishAll(ctx context.Context, publisher port.EventPublisher, evts []eventToPublish) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	batch := make([]events.DomainEvent, 0, len(evts))
	for _, e := range evts {
		batch = append(batch, e.e)
	}
	if err := publisher.Publish(ctx, batch...); err != nil {
		slog.Warn("event publish failed", "count", len(batch), "error", err)
	}
}
