package services

import (
	"context"
	"go-rail-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type BookingServiceMock struct {
	mock.Mock
}

func NewBookingServiceMock() *BookingServiceMock {
	return &BookingServiceMock{}
}

func (m *BookingServiceMock) Reserve(ctx context.Context, userID, trainID, seats int) (*model.Booking, error) {
	args := m.Called(ctx, userID, trainID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *BookingServiceMock) Cancel(ctx context.Context, userID, bookingID int) error {
	args := m.Called(ctx, userID, bookingID)
	return args.Error(0)
}

func (m *BookingServiceMock) ListForUser(ctx context.Context, userID int, filter model.BookingFilter) ([]*model.Booking, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Booking), args.Error(1)
}

func (m *BookingServiceMock) GetForUser(ctx context.Context, userID, bookingID int) (*model.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}
