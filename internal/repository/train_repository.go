package repository

import (
	"context"
	"errors"
	"fmt"
	"go-rail-booking/internal/model"
	apperrors "go-rail-booking/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation = "23505"
	pgLockNotAvail    = "55P03"
)

type TrainRepository interface {
	Create(ctx context.Context, train *model.Train) (*model.Train, error)
	List(ctx context.Context) ([]*model.Train, error)
	FindByID(ctx context.Context, id int) (*model.Train, error)
	SearchByRoute(ctx context.Context, source, destination string) ([]*model.Train, error)

	// Transaction methods. The caller owns the transaction; every seat-count
	// mutation goes through here while the train row lock is held.
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Train, error)
	DecrementAvailableSeats(ctx context.Context, tx pgx.Tx, id int, seats int) error
	IncrementAvailableSeats(ctx context.Context, tx pgx.Tx, id int, seats int) error
	UpdateTx(ctx context.Context, tx pgx.Tx, train *model.Train) (*model.Train, error)
}

type TrainRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTrainRepository(pool *pgxpool.Pool) TrainRepository {
	return &TrainRepositoryImpl{
		pool: pool,
	}
}

const trainColumns = `id, train_id, train_number, name, source, destination,
		total_seats, available_seats, ticket_price, created_at, updated_at`

func scanTrain(row pgx.Row) (*model.Train, error) {
	var train model.Train
	err := row.Scan(
		&train.ID,
		&train.TrainID,
		&train.TrainNumber,
		&train.Name,
		&train.Source,
		&train.Destination,
		&train.TotalSeats,
		&train.AvailableSeats,
		&train.TicketPrice,
		&train.CreatedAt,
		&train.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &train, nil
}

// IsLockTimeout reports whether err is a lock_timeout expiry, i.e. the train
// row was held by another transaction longer than the configured wait.
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvail
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *TrainRepositoryImpl) Create(ctx context.Context, train *model.Train) (*model.Train, error) {
	query := `
		INSERT INTO trains (
		train_id, train_number, name, source, destination,
		total_seats, available_seats, ticket_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + trainColumns

	created, err := scanTrain(r.pool.QueryRow(ctx, query,
		train.TrainID, train.TrainNumber, train.Name, train.Source, train.Destination,
		train.TotalSeats, train.AvailableSeats, train.TicketPrice,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateTrainNumber
		}
		return nil, err
	}

	return created, nil
}

func (r *TrainRepositoryImpl) List(ctx context.Context) ([]*model.Train, error) {
	query := `
		SELECT ` + trainColumns + `
		FROM trains
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]*model.Train, 0)

	for rows.Next() {
		train, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trains, nil
}

func (r *TrainRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Train, error) {
	query := `
		SELECT ` + trainColumns + `
		FROM trains
		WHERE id = $1
	`

	train, err := scanTrain(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTrainNotFound
		}
		return nil, err
	}

	return train, nil
}

func (r *TrainRepositoryImpl) SearchByRoute(ctx context.Context, source, destination string) ([]*model.Train, error) {
	query := `
		SELECT ` + trainColumns + `
		FROM trains
		WHERE source = $1 AND destination = $2 AND available_seats > 0
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, source, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]*model.Train, 0)

	for rows.Next() {
		train, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trains, nil
}

func (r *TrainRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Train, error) {
	query := `
		SELECT ` + trainColumns + `
		FROM trains
		WHERE id = $1
		FOR UPDATE
	`

	train, err := scanTrain(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTrainNotFound
		}
		if IsLockTimeout(err) {
			return nil, apperrors.ErrTrainBusy
		}
		return nil, err
	}

	return train, nil
}

func (r *TrainRepositoryImpl) DecrementAvailableSeats(ctx context.Context, tx pgx.Tx, id int, seats int) error {
	query := `
		UPDATE trains
		SET available_seats = available_seats - $1, updated_at = $2
		WHERE id = $3 AND available_seats >= $1
	`

	result, err := tx.Exec(ctx, query, seats, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientSeats
	}

	return nil
}

func (r *TrainRepositoryImpl) IncrementAvailableSeats(ctx context.Context, tx pgx.Tx, id int, seats int) error {
	query := `
		UPDATE trains
		SET available_seats = available_seats + $1, updated_at = $2
		WHERE id = $3 AND available_seats + $1 <= total_seats
	`

	result, err := tx.Exec(ctx, query, seats, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	// A zero row count here means the increment would push the counter past
	// total_seats, which can only happen if the invariant was already broken.
	if result.RowsAffected() == 0 {
		return apperrors.ErrInvalidSeatTotal
	}

	return nil
}

func (r *TrainRepositoryImpl) UpdateTx(ctx context.Context, tx pgx.Tx, train *model.Train) (*model.Train, error) {
	query := `
		UPDATE trains
		SET train_number = $1, name = $2, source = $3, destination = $4,
			total_seats = $5, available_seats = $6, ticket_price = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + trainColumns

	updated, err := scanTrain(tx.QueryRow(ctx, query,
		train.TrainNumber, train.Name, train.Source, train.Destination,
		train.TotalSeats, train.AvailableSeats, train.TicketPrice,
		time.Now().UTC(), train.ID,
	))

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTrainNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateTrainNumber
		}
		return nil, fmt.Errorf("failed to update train: %w", err)
	}

	return updated, nil
}
