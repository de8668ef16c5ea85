package queue

import (
	"context"
	"testing"
	"time"

	"hd-tickets/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchQueue_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMatchQueue(4)
	msgs, err := q.SubscribeMatches(ctx)
	require.NoError(t, err)

	match := &model.MatchFound{AlertID: 1, UserID: 2, Score: 90}
	require.NoError(t, q.PublishMatch(ctx, match))

	select {
	case d := <-msgs:
		assert.Equal(t, match, d.Data)
		d.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestMatchQueue_NackRequeues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMatchQueue(4)
	msgs, err := q.SubscribeMatches(ctx)
	require.NoError(t, err)

	match := &model.MatchFound{AlertID: 1}
	require.NoError(t, q.PublishMatch(ctx, match))

	first := <-msgs
	first.Nack(true)

	select {
	case second := <-msgs:
		assert.Equal(t, match, second.Data)
		second.Ack()
	case <-time.After(time.Second):
		t.Fatal("nacked delivery was not redelivered")
	}
}

func TestMatchQueue_PublishHonorsContext(t *testing.T) {
	q := NewMatchQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.PublishMatch(ctx, &model.MatchFound{AlertID: 1}))

	cancel()
	err := q.PublishMatch(ctx, &model.MatchFound{AlertID: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
