package model

import (
	"strconv"
	"time"
)

// BookingStatus lifecycle: active counts against train capacity, cancelled
// does not.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusActive, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks whether the status may move to the target state.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return s == BookingStatusActive && target == BookingStatusCancelled
}

// Booking ties a user to seats on one train. TotalPrice is snapshotted at
// reservation time and never recomputed when the train price changes.
type Booking struct {
	ID          int           `json:"id" db:"id"`
	UserID      int           `json:"user_id" db:"user_id"`
	TrainID     int           `json:"train_id" db:"train_id"`
	Seats       int           `json:"seats" db:"seats"`
	SeatNumbers []string      `json:"seat_numbers" db:"seat_numbers"`
	TotalPrice  float64       `json:"total_price" db:"total_price"`
	Status      BookingStatus `json:"status" db:"status"`
	BookedAt    time.Time     `json:"booked_at" db:"booked_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusActive
}

// CreateBookingRequest is the reservation payload; the user id comes from the
// authenticated token, never from the body.
type CreateBookingRequest struct {
	TrainID int `json:"train_id" binding:"required"`
	Seats   int `json:"seats" binding:"required,min=1"`
}

// BookingFilter holds optional conjunctive filters for listing a user's
// bookings.
type BookingFilter struct {
	TrainID *int
	From    *time.Time
	To      *time.Time
}

// AssignSeatNumbers derives seat identifiers from the count of bookings that
// already exist on a train: ten seats per row, row letters A, B, C...
// (A1..A10, B1..B10, ...). The count includes cancelled bookings so an
// identifier is never handed out twice on the same train. Callers must hold
// the train's row lock while counting and persisting, which is what makes the
// result unique per train under concurrency.
func AssignSeatNumbers(priorBookings, seats int) []string {
	numbers := make([]string, 0, seats)
	for i := 0; i < seats; i++ {
		pos := priorBookings + i
		row := rune('A' + (pos/10)%26)
		numbers = append(numbers, string(row)+strconv.Itoa(pos%10+1))
	}
	return numbers
}
