package services

import (
	"context"
	"go-rail-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type TrainServiceMock struct {
	mock.Mock
}

func NewTrainServiceMock() *TrainServiceMock {
	return &TrainServiceMock{}
}

func (m *TrainServiceMock) Create(ctx context.Context, train *model.Train) (*model.Train, error) {
	args := m.Called(ctx, train)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Train), args.Error(1)
}

func (m *TrainServiceMock) Update(ctx context.Context, id int, params model.UpdateTrainParams) (*model.Train, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Train), args.Error(1)
}

func (m *TrainServiceMock) List(ctx context.Context) ([]*model.Train, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Train), args.Error(1)
}

func (m *TrainServiceMock) GetByID(ctx context.Context, id int) (*model.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Train), args.Error(1)
}

func (m *TrainServiceMock) SearchByRoute(ctx context.Context, source, destination string) ([]*model.Train, error) {
	args := m.Called(ctx, source, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Train), args.Error(1)
}
