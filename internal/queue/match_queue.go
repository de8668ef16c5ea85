package queue

import (
	"context"

	"hd-tickets/internal/model"
)

type Delivery struct {
	Data *model.MatchFound
	Ack  func()
	Nack func(requeue bool)
}

// MatchQueue decouples the alert engine from notification dispatch. The flow
// is one-directional: consumers never publish back into the alert pipeline.
type MatchQueue interface {
	PublishMatch(ctx context.Context, match *model.MatchFound) error
	SubscribeMatches(ctx context.Context) (<-chan Delivery, error)
}

type MatchQueueImpl struct {
	ch chan *model.MatchFound
}

func NewMatchQueue(bufferSize int) MatchQueue {
	return &MatchQueueImpl{
		ch: make(chan *model.MatchFound, bufferSize),
	}
}

func (q *MatchQueueImpl) PublishMatch(ctx context.Context, match *model.MatchFound) error {
	select {
	case q.ch <- match:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MatchQueueImpl) SubscribeMatches(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case match, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: match,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- match
						}
					},
				}
			}
		}
	}()

	return out, nil
}
