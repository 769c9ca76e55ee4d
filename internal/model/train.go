package model

import (
	"time"

	"github.com/google/uuid"
)

// Train is a catalog record with a mutable seat counter. AvailableSeats is
// only ever changed inside a transaction that holds the train's row lock;
// the invariant 0 <= available_seats <= total_seats is also enforced by a
// database CHECK constraint.
type Train struct {
	ID             int       `json:"id" db:"id"`
	TrainID        uuid.UUID `json:"train_id" db:"train_id"`
	TrainNumber    string    `json:"train_number" db:"train_number"`
	Name           string    `json:"name" db:"name"`
	Source         string    `json:"source" db:"source"`
	Destination    string    `json:"destination" db:"destination"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	TicketPrice    float64   `json:"ticket_price" db:"ticket_price"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateTrainParams struct {
	TrainNumber *string
	Name        *string
	Source      *string
	Destination *string
	TotalSeats  *int
	TicketPrice *float64
}

// IsEmpty reports whether the patch carries no fields at all.
func (p UpdateTrainParams) IsEmpty() bool {
	return p.TrainNumber == nil && p.Name == nil && p.Source == nil &&
		p.Destination == nil && p.TotalSeats == nil && p.TicketPrice == nil
}
