package worker

import (
	"context"
	"go-rail-booking/internal/queue"
	"go-rail-booking/internal/repository"
	"go-rail-booking/pkg/logger"

	"go.uber.org/zap"
)

// AuditWorker drains the booking event queue and persists each event into
// the booking_events audit table.
type AuditWorker interface {
	Start(ctx context.Context) error
}

type AuditWorkerImpl struct {
	events repository.BookingEventRepository
	queue  queue.BookingEventQueue
}

func NewAuditWorker(events repository.BookingEventRepository, queue queue.BookingEventQueue) AuditWorker {
	return &AuditWorkerImpl{
		events: events,
		queue:  queue,
	}
}

func (w *AuditWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("audit-worker")
		for msg := range msgs {
			if _, err := w.events.Insert(ctx, msg.Data); err != nil {
				log.Warn("persist booking event failed, requeueing",
					zap.Int("booking_id", msg.Data.BookingID), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
