package model

import "time"

type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking_created"
	BookingEventCancelled BookingEventType = "booking_cancelled"
)

// BookingEvent is the audit record published after a reservation or
// cancellation commits. It is informational only and never part of the
// reservation transaction.
type BookingEvent struct {
	ID         int              `json:"id" db:"id"`
	BookingID  int              `json:"booking_id" db:"booking_id"`
	UserID     int              `json:"user_id" db:"user_id"`
	TrainID    int              `json:"train_id" db:"train_id"`
	Seats      int              `json:"seats" db:"seats"`
	Type       BookingEventType `json:"type" db:"event_type"`
	OccurredAt time.Time        `json:"occurred_at" db:"occurred_at"`
}
