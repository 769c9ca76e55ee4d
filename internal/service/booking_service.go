package service

import (
	"context"
	"fmt"
	"go-rail-booking/internal/cache"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/queue"
	"go-rail-booking/internal/repository"
	apperrors "go-rail-booking/pkg/app_errors"
	"go-rail-booking/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BookingService interface {
	// Reserve books seats on a train inside one transaction that holds the
	// train's row lock from availability check to commit.
	Reserve(ctx context.Context, userID, trainID, seats int) (*model.Booking, error)
	// Cancel reverses a reservation: restores the seat counter and flips the
	// booking to cancelled in the same transaction.
	Cancel(ctx context.Context, userID, bookingID int) error
	ListForUser(ctx context.Context, userID int, filter model.BookingFilter) ([]*model.Booking, error)
	GetForUser(ctx context.Context, userID, bookingID int) (*model.Booking, error)
}

type BookingServiceImpl struct {
	pool        *pgxpool.Pool
	bookings    repository.BookingRepository
	trains      repository.TrainRepository
	routeCache  cache.RouteAvailabilityCache
	eventQueue  queue.BookingEventQueue
	lockTimeout time.Duration
}

func NewBookingService(
	pool *pgxpool.Pool,
	bookingRepository repository.BookingRepository,
	trainRepository repository.TrainRepository,
	routeCache cache.RouteAvailabilityCache,
	eventQueue queue.BookingEventQueue,
	lockTimeout time.Duration,
) BookingService {
	return &BookingServiceImpl{
		pool:        pool,
		bookings:    bookingRepository,
		trains:      trainRepository,
		routeCache:  routeCache,
		eventQueue:  eventQueue,
		lockTimeout: lockTimeout,
	}
}

// setTxLockTimeout bounds lock waits for the current transaction so a
// stalled holder cannot block a train's bookings forever. On expiry Postgres
// raises 55P03, surfaced to callers as the retryable ErrTrainBusy.
func setTxLockTimeout(ctx context.Context, tx pgx.Tx, d time.Duration) error {
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds()))
	return err
}

func (s *BookingServiceImpl) Reserve(ctx context.Context, userID, trainID, seats int) (*model.Booking, error) {
	if seats < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTxLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, err
	}

	// Exclusive lock on the train row; a concurrent Reserve or Cancel on the
	// same train blocks here until this transaction finishes.
	train, err := s.trains.FindByIDWithLock(ctx, tx, trainID)
	if err != nil {
		return nil, err
	}

	if train.AvailableSeats < seats {
		return nil, apperrors.ErrInsufficientSeats
	}

	// Seat identifiers come from the all-time booking count on this train,
	// computed under the same lock as the counter decrement.
	prior, err := s.bookings.CountByTrain(ctx, tx, train.ID)
	if err != nil {
		return nil, err
	}

	if err := s.trains.DecrementAvailableSeats(ctx, tx, train.ID, seats); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:      userID,
		TrainID:     train.ID,
		Seats:       seats,
		SeatNumbers: model.AssignSeatNumbers(prior, seats),
		TotalPrice:  train.TicketPrice * float64(seats), // price snapshot
		Status:      model.BookingStatusActive,
	}

	created, err := s.bookings.Create(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if repository.IsLockTimeout(err) {
			return nil, apperrors.ErrTrainBusy
		}
		return nil, err
	}

	s.afterCommit(created, train, model.BookingEventCreated)

	return created, nil
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, userID, bookingID int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := setTxLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return err
	}

	// Ownership is part of the lookup: someone else's booking id reads as
	// not found, never as forbidden.
	booking, err := s.bookings.FindByIDAndUserWithLock(ctx, tx, bookingID, userID)
	if err != nil {
		return err
	}

	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return apperrors.ErrBookingNotActive
	}

	// Lock the train after the booking. Reserve never locks booking rows, so
	// there is only one acquisition order and no deadlock window.
	train, err := s.trains.FindByIDWithLock(ctx, tx, booking.TrainID)
	if err != nil {
		return err
	}

	if err := s.trains.IncrementAvailableSeats(ctx, tx, train.ID, booking.Seats); err != nil {
		return err
	}

	cancelled, err := s.bookings.UpdateStatus(ctx, tx, booking.ID, model.BookingStatusCancelled)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if repository.IsLockTimeout(err) {
			return apperrors.ErrTrainBusy
		}
		return err
	}

	s.afterCommit(cancelled, train, model.BookingEventCancelled)

	return nil
}

// afterCommit publishes the audit event and drops the stale route cache
// entry. Both are best effort on a background context: the reservation is
// already durable and must not be failed retroactively.
func (s *BookingServiceImpl) afterCommit(booking *model.Booking, train *model.Train, eventType model.BookingEventType) {
	ctx := context.Background()
	log := logger.WithComponent("booking-service")

	event := &model.BookingEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		TrainID:   booking.TrainID,
		Seats:     booking.Seats,
		Type:      eventType,
	}
	if err := s.eventQueue.PublishEvent(ctx, event); err != nil {
		log.Warn("publish booking event failed", zap.Int("booking_id", booking.ID), zap.Error(err))
	}

	if err := s.routeCache.InvalidateRoute(ctx, train.Source, train.Destination); err != nil {
		log.Warn("invalidate route cache failed", zap.String("source", train.Source), zap.String("destination", train.Destination), zap.Error(err))
	}
}

func (s *BookingServiceImpl) ListForUser(ctx context.Context, userID int, filter model.BookingFilter) ([]*model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, filter)
}

func (s *BookingServiceImpl) GetForUser(ctx context.Context, userID, bookingID int) (*model.Booking, error) {
	return s.bookings.FindByIDAndUser(ctx, bookingID, userID)
}
