package repository

import (
	"context"
	"go-rail-booking/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingEventRepository persists the audit trail written by the worker.
// Events live outside the reservation transaction.
type BookingEventRepository interface {
	Insert(ctx context.Context, event *model.BookingEvent) (*model.BookingEvent, error)
	ListByBooking(ctx context.Context, bookingID int) ([]*model.BookingEvent, error)
}

type BookingEventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingEventRepository(pool *pgxpool.Pool) BookingEventRepository {
	return &BookingEventRepositoryImpl{
		pool: pool,
	}
}

func (r *BookingEventRepositoryImpl) Insert(ctx context.Context, event *model.BookingEvent) (*model.BookingEvent, error) {
	query := `
		INSERT INTO booking_events (booking_id, user_id, train_id, seats, event_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, user_id, train_id, seats, event_type, occurred_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.BookingID, event.UserID, event.TrainID, event.Seats, event.Type,
	).Scan(
		&event.ID,
		&event.BookingID,
		&event.UserID,
		&event.TrainID,
		&event.Seats,
		&event.Type,
		&event.OccurredAt,
	)

	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *BookingEventRepositoryImpl) ListByBooking(ctx context.Context, bookingID int) ([]*model.BookingEvent, error) {
	query := `
		SELECT id, booking_id, user_id, train_id, seats, event_type, occurred_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.BookingEvent, 0)

	for rows.Next() {
		var event model.BookingEvent
		err := rows.Scan(
			&event.ID,
			&event.BookingID,
			&event.UserID,
			&event.TrainID,
			&event.Seats,
			&event.Type,
			&event.OccurredAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
