package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/metrics"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

const markProcessedSQL = `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`

// Relay listens for NOTIFY signals on outbox_channel and forwards the
// committed events to the broker. A periodic sweep picks up anything the
// listener missed.
type Relay struct {
	db        *sql.DB
	publisher ports.EventPublisher
	listener  *pq.Listener
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker
	logger    *zap.Logger

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.EventPublisher, logger *zap.Logger) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL", logger),
		logger:        logger,
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy is the liveness signal. An open breaker is degraded, not dead.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady fails while the database breaker is open or the relay is stuck.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy
}

func (r *Relay) markProgress(healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.healthy = healthy
	if healthy {
		r.lastProcessed = time.Now()
	}
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("outbox listener error", zap.Error(err))
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}
	r.logger.Info("outbox relay listening", zap.String("channel", outboxChannelName))

	// catch up on anything written while the relay was down
	if err := r.ProcessPending(ctx); err != nil {
		r.logger.Error("startup backlog failed", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case n := <-r.listener.Notify:
			if n == nil {
				// connection was re-established; notifications may have been lost
				r.logger.Warn("outbox listener reconnected")
				r.markProgress(false)
				if err := r.ProcessPending(ctx); err == nil {
					r.markProgress(true)
				}
				continue
			}
			if err := r.ProcessEvent(ctx, n.Extra); err != nil {
				r.logger.Error("failed to relay event", zap.String("event_id", n.Extra), zap.Error(err))
				continue
			}
			r.markProgress(true)

		case <-ticker.C:
			go func() { _ = r.listener.Ping() }()
			if err := r.ProcessPending(ctx); err != nil {
				r.logger.Error("periodic outbox sweep failed", zap.Error(err))
				continue
			}
			r.markProgress(true)
		}
	}
}

type record struct {
	ID        string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// publish sends rec and marks it processed inside tx. A payload that is not
// valid JSON is marked processed without publishing so it cannot block the
// queue.
func (r *Relay) publish(ctx context.Context, tx *sql.Tx, rec record) error {
	if !json.Valid(rec.Payload) {
		r.logger.Error("dropping outbox event with invalid payload", zap.String("event_id", rec.ID))
		_, err := tx.ExecContext(ctx, markProcessedSQL, rec.ID)
		return err
	}

	evt := domain.Event{
		ID:        rec.ID,
		Type:      domain.EventType(rec.EventType),
		Payload:   json.RawMessage(rec.Payload),
		CreatedAt: rec.CreatedAt,
	}
	if err := r.publisher.Publish(ctx, evt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, markProcessedSQL, rec.ID); err != nil {
		return err
	}
	metrics.OutboxPublished.WithLabelValues(rec.EventType).Inc()
	return nil
}

// ProcessEvent relays a single event. Rows already taken by another relay
// or already processed are skipped.
func (r *Relay) ProcessEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var rec record
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&rec.ID, &rec.EventType, &rec.Payload, &rec.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.publish(ctx, tx, rec); err != nil {
			return nil, err
		}
		r.logger.Debug("relayed event", zap.String("event_id", rec.ID), zap.String("type", rec.EventType))
		return nil, tx.Commit()
	})
	return err
}

// ProcessPending relays up to one batch of unprocessed events in creation
// order. A publish failure stops the batch so later events are not sent
// ahead of it; what was already sent is still committed.
func (r *Relay) ProcessPending(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload, &rec.CreatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		sent := 0
		for _, rec := range records {
			if err := r.publish(ctx, tx, rec); err != nil {
				r.logger.Warn("publish failed, stopping batch", zap.String("event_id", rec.ID), zap.Error(err))
				break
			}
			sent++
		}
		if sent > 0 {
			r.logger.Info("relayed outbox batch", zap.Int("count", sent), zap.Int("pending", len(records)))
		}
		return nil, tx.Commit()
	})
	return err
}
