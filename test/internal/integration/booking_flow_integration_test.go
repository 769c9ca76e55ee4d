package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"go-rail-booking/config"
	"go-rail-booking/internal/cache"
	"go-rail-booking/internal/handler"
	"go-rail-booking/internal/middleware"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/queue"
	"go-rail-booking/internal/repository"
	"go-rail-booking/internal/service"
	"go-rail-booking/internal/worker"
	"go-rail-booking/test/internal/testutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDB  *pgxpool.Pool
	testRdb *redis.Client
)

func TestMain(m *testing.M) {
	db, rdb, cleanup, err := testutil.Setup()
	if err != nil {
		log.Fatalf("Failed to setup test environment: %v", err)
	}
	defer cleanup()
	testDB = db
	testRdb = rdb

	code := m.Run()
	os.Exit(code)
}

func cleanupAll(ctx context.Context, t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(ctx, "TRUNCATE bookings, booking_events, trains, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	require.NoError(t, testRdb.FlushDB(ctx).Err())
}

// setupIntegrationRouter wires every real component: repositories, services,
// the in-process event queue with the audit worker, and the JWT middleware.
func setupIntegrationRouter(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	cleanupAll(context.Background(), t)

	trainRepo := repository.NewTrainRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	eventRepo := repository.NewBookingEventRepository(testDB)
	routeCache := cache.NewRouteAvailabilityCache(testRdb, 0)
	eventQueue := queue.NewBookingEventQueue(100)

	authCfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4}
	authService := service.NewAuthService(userRepo, authCfg)
	bookingService := service.NewBookingService(testDB, bookingRepo, trainRepo, routeCache, eventQueue, 3*time.Second)
	trainService := service.NewTrainService(testDB, trainRepo, bookingRepo, routeCache, 3*time.Second)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	auditWorker := worker.NewAuditWorker(eventRepo, eventQueue)
	require.NoError(t, auditWorker.Start(workerCtx))

	gin.SetMode(gin.TestMode)
	router := gin.New()

	auth := middleware.RequireAuth(authService)
	admin := middleware.RequireAdmin()
	handler.NewAuthHandler(authService).RegisterRoutes(router, auth)
	handler.NewTrainHandler(trainService).RegisterRoutes(router, auth, admin)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router, auth)

	return router, workerCancel
}

func doJSON(t *testing.T, router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string, admin bool) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	if admin {
		_, err := testDB.Exec(context.Background(),
			"UPDATE users SET is_admin = TRUE WHERE username = $1", username)
		require.NoError(t, err)
	}

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var token model.AccessToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return token.Token
}

func TestBookingFlow_Integration(t *testing.T) {
	router, stopWorker := setupIntegrationRouter(t)
	defer stopWorker()

	adminToken := registerAndLogin(t, router, "admin", true)
	aliceToken := registerAndLogin(t, router, "alice", false)

	// Admin publishes a train.
	w := doJSON(t, router, "POST", "/api/v1/trains", adminToken, map[string]interface{}{
		"train_number": "12951",
		"name":         "Mumbai Rajdhani",
		"source":       "Mumbai",
		"destination":  "Delhi",
		"total_seats":  10,
		"ticket_price": 1500.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var train model.Train
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &train))
	require.Equal(t, 10, train.AvailableSeats)

	// A regular user cannot publish trains.
	w = doJSON(t, router, "POST", "/api/v1/trains", aliceToken, map[string]interface{}{
		"train_number": "99999",
		"name":         "Rogue",
		"source":       "A",
		"destination":  "B",
		"total_seats":  1,
		"ticket_price": 1.0,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Alice books 3 seats.
	w = doJSON(t, router, "POST", "/api/v1/bookings", aliceToken, map[string]int{
		"train_id": train.ID,
		"seats":    3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var booking model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, []string{"A1", "A2", "A3"}, booking.SeatNumbers)
	assert.Equal(t, 4500.0, booking.TotalPrice)

	// Availability dropped on the public search.
	w = doJSON(t, router, "GET", "/api/v1/trains/search?source=Mumbai&destination=Delhi", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trains []*model.Train
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trains))
	require.Len(t, trains, 1)
	assert.Equal(t, 7, trains[0].AvailableSeats)

	// Booking more than what is left is refused.
	w = doJSON(t, router, "POST", "/api/v1/bookings", aliceToken, map[string]int{
		"train_id": train.ID,
		"seats":    8,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Alice sees her booking; an unauthenticated caller sees nothing.
	w = doJSON(t, router, "GET", "/api/v1/bookings", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []*model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)

	w = doJSON(t, router, "GET", "/api/v1/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Cancel restores the seats; a second cancel conflicts.
	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), aliceToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/trains/%d", train.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after model.Train
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 10, after.AvailableSeats)

	// The audit worker drains the queue into booking_events.
	assert.Eventually(t, func() bool {
		var count int
		err := testDB.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM booking_events WHERE booking_id = $1", booking.ID).Scan(&count)
		return err == nil && count == 2
	}, 3*time.Second, 100*time.Millisecond, "expected created and cancelled audit events")
}

func TestBookingFlow_Integration_OwnershipIsolation(t *testing.T) {
	router, stopWorker := setupIntegrationRouter(t)
	defer stopWorker()

	adminToken := registerAndLogin(t, router, "admin", true)
	aliceToken := registerAndLogin(t, router, "alice", false)
	bobToken := registerAndLogin(t, router, "bob", false)

	w := doJSON(t, router, "POST", "/api/v1/trains", adminToken, map[string]interface{}{
		"train_number": "12952",
		"name":         "Duronto",
		"source":       "Delhi",
		"destination":  "Pune",
		"total_seats":  5,
		"ticket_price": 900.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var train model.Train
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &train))

	w = doJSON(t, router, "POST", "/api/v1/bookings", aliceToken, map[string]int{
		"train_id": train.ID,
		"seats":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	// Bob cannot read or cancel Alice's booking; both read as missing.
	w = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/bookings/%d", booking.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Alice still can.
	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
