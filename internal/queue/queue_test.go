package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	notice := CheckinNotice{
		EventID:     "evt-1",
		EventName:   "Orientation",
		RegNumber:   "21BCE0001",
		ArrivalTime: "8/31/2026, 10:15:00 AM",
	}
	require.NoError(t, q.Publish(ctx, notice))

	out, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case got := <-out:
		assert.Equal(t, notice, got)
	case <-time.After(time.Second):
		t.Fatal("no notice consumed")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	err := q.Publish(ctx, CheckinNotice{EventID: "evt-1"})
	require.ErrorIs(t, err, context.Canceled)
}
