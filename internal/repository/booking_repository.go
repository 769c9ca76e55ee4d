package repository

import (
	"context"
	"fmt"
	"go-rail-booking/internal/model"
	apperrors "go-rail-booking/pkg/app_errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	FindByIDAndUser(ctx context.Context, id int, userID int) (*model.Booking, error)
	ListByUser(ctx context.Context, userID int, filter model.BookingFilter) ([]*model.Booking, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error)
	FindByIDAndUserWithLock(ctx context.Context, tx pgx.Tx, id int, userID int) (*model.Booking, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.BookingStatus) (*model.Booking, error)
	CountByTrain(ctx context.Context, tx pgx.Tx, trainID int) (int, error)
	SumActiveSeatsByTrain(ctx context.Context, tx pgx.Tx, trainID int) (int, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

const bookingColumns = `id, user_id, train_id, seats, seat_numbers,
		total_price, status, booked_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.TrainID,
		&booking.Seats,
		&booking.SeatNumbers,
		&booking.TotalPrice,
		&booking.Status,
		&booking.BookedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (
			user_id, train_id, seats, seat_numbers, total_price, status
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + bookingColumns

	created, err := scanBooking(tx.QueryRow(ctx, query,
		booking.UserID, booking.TrainID, booking.Seats,
		booking.SeatNumbers, booking.TotalPrice, booking.Status,
	))

	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return created, nil
}

// FindByIDAndUser scopes the lookup to the owner; another user's booking id
// behaves exactly like a missing one.
func (r *BookingRepositoryImpl) FindByIDAndUser(ctx context.Context, id int, userID int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return booking, nil
}

// FindByIDAndUserWithLock locks the booking row for the cancellation
// transaction. The ownership check is folded into the predicate so a
// mismatch surfaces as not-found rather than forbidden.
func (r *BookingRepositoryImpl) FindByIDAndUserWithLock(ctx context.Context, tx pgx.Tx, id int, userID int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	booking, err := scanBooking(tx.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		if IsLockTimeout(err) {
			return nil, apperrors.ErrTrainBusy
		}
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepositoryImpl) ListByUser(ctx context.Context, userID int, filter model.BookingFilter) ([]*model.Booking, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argPos := 2

	if filter.TrainID != nil {
		conditions = append(conditions, fmt.Sprintf("train_id = $%d", argPos))
		args = append(args, *filter.TrainID)
		argPos++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("booked_at >= $%d", argPos))
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("booked_at <= $%d", argPos))
		args = append(args, *filter.To)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE %s
		ORDER BY id ASC
	`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.BookingStatus) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + bookingColumns

	booking, err := scanBooking(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return booking, nil
}

// CountByTrain counts every booking ever made on a train, cancelled ones
// included, so seat identifiers derived from it are never reused. Must be
// called with the train row lock held.
func (r *BookingRepositoryImpl) CountByTrain(ctx context.Context, tx pgx.Tx, trainID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE train_id = $1
	`

	var count int
	err := tx.QueryRow(ctx, query, trainID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SumActiveSeatsByTrain returns the seats currently committed to active
// bookings, used to validate catalog updates against the seat invariant.
func (r *BookingRepositoryImpl) SumActiveSeatsByTrain(ctx context.Context, tx pgx.Tx, trainID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(seats), 0)
		FROM bookings
		WHERE train_id = $1 AND status = $2
	`

	var total int
	err := tx.QueryRow(ctx, query, trainID, model.BookingStatusActive).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
