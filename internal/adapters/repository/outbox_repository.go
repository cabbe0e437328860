package repository

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

// OutboxRepository writes events in the caller's transaction. An insert
// trigger fires NOTIFY on outbox_channel with the event id for the relay.
type OutboxRepository struct {
	q querier
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Enqueue(ctx context.Context, evt domain.Event) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)`,
		evt.ID, string(evt.Type), string(evt.Payload), evt.CreatedAt)
	return mapError(err, "outbox event")
}
