package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

func TestConsumer_Process(t *testing.T) {
	var got []domain.Event
	var handlerErr error
	c := NewConsumer("amqp://unused", "rescue.events", func(ctx context.Context, evt domain.Event) error {
		got = append(got, evt)
		return handlerErr
	}, zap.NewNop())

	body, err := json.Marshal(domain.Event{
		ID:        "e1",
		Type:      domain.EventApplicationSubmitted,
		Payload:   json.RawMessage(`{"application_id":"app-1"}`),
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	retry, err := c.Process(context.Background(), body)
	require.NoError(t, err)
	assert.True(t, retry)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventApplicationSubmitted, got[0].Type)

	retry, err = c.Process(context.Background(), []byte("not json"))
	assert.Error(t, err)
	assert.False(t, retry, "malformed messages are never retried")

	handlerErr = domain.Validationf("unknown event type")
	retry, err = c.Process(context.Background(), body)
	assert.Error(t, err)
	assert.False(t, retry)

	handlerErr = domain.Unavailable("mail server is unavailable", errors.New("dial tcp: timeout"))
	retry, err = c.Process(context.Background(), body)
	assert.Error(t, err)
	assert.True(t, retry)
}

func TestSleep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}

func TestConsumer_ConnectedDefaultsFalse(t *testing.T) {
	c := NewConsumer("amqp://unused", "rescue.events", func(context.Context, domain.Event) error { return nil }, zap.NewNop())
	assert.False(t, c.Connected())
}
