package queue

import (
	"context"
	"go-rail-booking/internal/model"
)

type Delivery struct {
	Data *model.BookingEvent
	Ack  func()
	Nack func(requeue bool)
}

// BookingEventQueue carries post-commit audit events from the booking
// service to the audit worker. Publishing is best effort and never part of
// the reservation transaction.
type BookingEventQueue interface {
	PublishEvent(ctx context.Context, event *model.BookingEvent) error
	SubscribeEvents(ctx context.Context) (<-chan Delivery, error)
}

// BookingEventQueueImpl is the in-process channel implementation, used in
// tests and single-node setups.
type BookingEventQueueImpl struct {
	ch chan *model.BookingEvent
}

func NewBookingEventQueue(bufferSize int) BookingEventQueue {
	return &BookingEventQueueImpl{
		ch: make(chan *model.BookingEvent, bufferSize),
	}
}

func (q *BookingEventQueueImpl) PublishEvent(ctx context.Context, event *model.BookingEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *BookingEventQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event
						}
					},
				}
			}
		}
	}()

	return out, nil
}
