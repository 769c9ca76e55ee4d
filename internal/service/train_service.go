package service

import (
	"context"
	"go-rail-booking/internal/cache"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/repository"
	apperrors "go-rail-booking/pkg/app_errors"
	"go-rail-booking/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TrainService interface {
	Create(ctx context.Context, train *model.Train) (*model.Train, error)
	Update(ctx context.Context, id int, params model.UpdateTrainParams) (*model.Train, error)
	List(ctx context.Context) ([]*model.Train, error)
	GetByID(ctx context.Context, id int) (*model.Train, error)
	SearchByRoute(ctx context.Context, source, destination string) ([]*model.Train, error)
}

type TrainServiceImpl struct {
	pool        *pgxpool.Pool
	trains      repository.TrainRepository
	bookings    repository.BookingRepository
	routeCache  cache.RouteAvailabilityCache
	lockTimeout time.Duration
}

func NewTrainService(
	pool *pgxpool.Pool,
	trainRepository repository.TrainRepository,
	bookingRepository repository.BookingRepository,
	routeCache cache.RouteAvailabilityCache,
	lockTimeout time.Duration,
) TrainService {
	return &TrainServiceImpl{
		pool:        pool,
		trains:      trainRepository,
		bookings:    bookingRepository,
		routeCache:  routeCache,
		lockTimeout: lockTimeout,
	}
}

func (s *TrainServiceImpl) Create(ctx context.Context, train *model.Train) (*model.Train, error) {
	if train.TotalSeats <= 0 || train.TicketPrice < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	train.TrainID = uuid.New()
	// A new train starts fully available.
	train.AvailableSeats = train.TotalSeats

	created, err := s.trains.Create(ctx, train)
	if err != nil {
		return nil, err
	}

	s.invalidateRoute(created.Source, created.Destination)

	return created, nil
}

// Update applies a partial patch under the train's row lock. Shrinking
// total_seats below the seats already committed to active bookings is
// rejected; otherwise available_seats is recomputed so the seat invariant
// holds at commit.
func (s *TrainServiceImpl) Update(ctx context.Context, id int, params model.UpdateTrainParams) (*model.Train, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if params.TotalSeats != nil && *params.TotalSeats <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if params.TicketPrice != nil && *params.TicketPrice < 0 {
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

	train, err := s.trains.FindByIDWithLock(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	oldSource, oldDestination := train.Source, train.Destination

	if params.TrainNumber != nil {
		train.TrainNumber = *params.TrainNumber
	}
	if params.Name != nil {
		train.Name = *params.Name
	}
	if params.Source != nil {
		train.Source = *params.Source
	}
	if params.Destination != nil {
		train.Destination = *params.Destination
	}
	if params.TicketPrice != nil {
		train.TicketPrice = *params.TicketPrice
	}
	if params.TotalSeats != nil && *params.TotalSeats != train.TotalSeats {
		committed, err := s.bookings.SumActiveSeatsByTrain(ctx, tx, train.ID)
		if err != nil {
			return nil, err
		}
		if *params.TotalSeats < committed {
			return nil, apperrors.ErrInvalidSeatTotal
		}
		train.TotalSeats = *params.TotalSeats
		train.AvailableSeats = *params.TotalSeats - committed
	}

	updated, err := s.trains.UpdateTx(ctx, tx, train)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateRoute(oldSource, oldDestination)
	s.invalidateRoute(updated.Source, updated.Destination)

	return updated, nil
}

func (s *TrainServiceImpl) List(ctx context.Context) ([]*model.Train, error) {
	return s.trains.List(ctx)
}

func (s *TrainServiceImpl) GetByID(ctx context.Context, id int) (*model.Train, error) {
	return s.trains.FindByID(ctx, id)
}

// SearchByRoute serves route lookups from the Redis cache when possible.
// The cache is display-only; capacity decisions never read it.
func (s *TrainServiceImpl) SearchByRoute(ctx context.Context, source, destination string) ([]*model.Train, error) {
	log := logger.WithComponent("train-service")

	cached, hit, err := s.routeCache.GetRoute(ctx, source, destination)
	if err != nil {
		log.Warn("route cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	trains, err := s.trains.SearchByRoute(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	if err := s.routeCache.SetRoute(ctx, source, destination, trains); err != nil {
		log.Warn("route cache write failed", zap.Error(err))
	}

	return trains, nil
}

func (s *TrainServiceImpl) invalidateRoute(source, destination string) {
	if err := s.routeCache.InvalidateRoute(context.Background(), source, destination); err != nil {
		logger.WithComponent("train-service").Warn("invalidate route cache failed",
			zap.String("source", source), zap.String("destination", destination), zap.Error(err))
	}
}
