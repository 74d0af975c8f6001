package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPublisher_RecordsEvents(t *testing.T) {
	p := NewMockPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	event := &ChainEvent{
		ID:        "evt-1",
		Type:      EventChainStarted,
		Timestamp: time.Now(),
		Source:    "solver-service",
		Version:   "1.0",
		Data: &ChainStartedEvent{
			SessionID:  "sess-1",
			Email:      "solver@example.com",
			InitialURL: "http://quiz.example.com/q/1",
			Strategy:   "heuristic",
		},
	}
	require.NoError(t, p.PublishChainEvent(context.Background(), event))

	published := p.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, "evt-1", published[0].ID)
	assert.Equal(t, EventChainStarted, published[0].Type)

	assert.NoError(t, p.Close())
}
