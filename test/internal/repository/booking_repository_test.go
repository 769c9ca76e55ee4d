package repository

import (
	"context"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/repository"
	apperrors "go-rail-booking/pkg/app_errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_Create(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	userID := createTestUser(t, "alice", "alice@test.com")
	trainID := createTestTrain(t, "501", "Delhi", "Shimla", 20)

	tx, rollback := beginTestTx(t)
	defer rollback()

	booking := &model.Booking{
		UserID:      userID,
		TrainID:     trainID,
		Seats:       2,
		SeatNumbers: []string{"A1", "A2"},
		TotalPrice:  1000.0,
		Status:      model.BookingStatusActive,
	}

	created, err := repo.Create(ctx, tx, booking)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"A1", "A2"}, created.SeatNumbers)
	assert.Equal(t, model.BookingStatusActive, created.Status)
	assert.False(t, created.BookedAt.IsZero())
}

func TestBookingRepository_FindByIDAndUser(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	alice := createTestUser(t, "alice", "alice@test.com")
	bob := createTestUser(t, "bob", "bob@test.com")
	trainID := createTestTrain(t, "502", "Delhi", "Shimla", 20)
	bookingID := createTestBooking(t, alice, trainID, 1, model.BookingStatusActive)

	t.Run("Success - owner", func(t *testing.T) {
		booking, err := repo.FindByIDAndUser(ctx, bookingID, alice)
		require.NoError(t, err)
		assert.Equal(t, bookingID, booking.ID)
	})

	t.Run("Failed - other user's booking reads as missing", func(t *testing.T) {
		_, err := repo.FindByIDAndUser(ctx, bookingID, bob)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingRepository_FindByIDAndUserWithLock(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	alice := createTestUser(t, "alice", "alice@test.com")
	bob := createTestUser(t, "bob", "bob@test.com")
	trainID := createTestTrain(t, "503", "Delhi", "Shimla", 20)
	bookingID := createTestBooking(t, alice, trainID, 1, model.BookingStatusActive)

	tx, rollback := beginTestTx(t)
	defer rollback()

	t.Run("Success", func(t *testing.T) {
		booking, err := repo.FindByIDAndUserWithLock(ctx, tx, bookingID, alice)
		require.NoError(t, err)
		assert.Equal(t, alice, booking.UserID)
	})

	t.Run("Failed - ownership mismatch", func(t *testing.T) {
		_, err := repo.FindByIDAndUserWithLock(ctx, tx, bookingID, bob)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	userID := createTestUser(t, "alice", "alice@test.com")
	trainID := createTestTrain(t, "504", "Delhi", "Shimla", 20)
	bookingID := createTestBooking(t, userID, trainID, 1, model.BookingStatusActive)

	tx, rollback := beginTestTx(t)
	defer rollback()

	booking, err := repo.UpdateStatus(ctx, tx, bookingID, model.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, booking.Status)
}

func TestBookingRepository_CountByTrain(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	userID := createTestUser(t, "alice", "alice@test.com")
	trainID := createTestTrain(t, "505", "Delhi", "Shimla", 20)

	createTestBooking(t, userID, trainID, 1, model.BookingStatusActive)
	createTestBooking(t, userID, trainID, 1, model.BookingStatusCancelled)

	tx, rollback := beginTestTx(t)
	defer rollback()

	// Cancelled bookings still count, their seat identifiers stay burned.
	count, err := repo.CountByTrain(ctx, tx, trainID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBookingRepository_SumActiveSeatsByTrain(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	userID := createTestUser(t, "alice", "alice@test.com")
	trainID := createTestTrain(t, "506", "Delhi", "Shimla", 20)

	createTestBooking(t, userID, trainID, 2, model.BookingStatusActive)
	createTestBooking(t, userID, trainID, 3, model.BookingStatusActive)
	createTestBooking(t, userID, trainID, 4, model.BookingStatusCancelled)

	tx, rollback := beginTestTx(t)
	defer rollback()

	total, err := repo.SumActiveSeatsByTrain(ctx, tx, trainID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestBookingRepository_ListByUser(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewBookingRepository(getTestDB())
	alice := createTestUser(t, "alice", "alice@test.com")
	bob := createTestUser(t, "bob", "bob@test.com")
	trainA := createTestTrain(t, "507", "Delhi", "Shimla", 20)
	trainB := createTestTrain(t, "508", "Delhi", "Manali", 20)

	first := createTestBooking(t, alice, trainA, 1, model.BookingStatusActive)
	second := createTestBooking(t, alice, trainB, 1, model.BookingStatusCancelled)
	createTestBooking(t, bob, trainA, 1, model.BookingStatusActive)

	t.Run("No filters - active and cancelled, insertion order", func(t *testing.T) {
		bookings, err := repo.ListByUser(ctx, alice, model.BookingFilter{})
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, first, bookings[0].ID)
		assert.Equal(t, second, bookings[1].ID)
	})

	t.Run("Filter by train", func(t *testing.T) {
		bookings, err := repo.ListByUser(ctx, alice, model.BookingFilter{TrainID: &trainB})
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, trainB, bookings[0].TrainID)
	})

	t.Run("Filter by date range", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		future := time.Now().UTC().Add(time.Hour)
		bookings, err := repo.ListByUser(ctx, alice, model.BookingFilter{From: &past, To: &future})
		require.NoError(t, err)
		assert.Len(t, bookings, 2)

		bookings, err = repo.ListByUser(ctx, alice, model.BookingFilter{From: &future})
		require.NoError(t, err)
		assert.Len(t, bookings, 0)
	})
}
