package handler

import (
	"errors"
	"go-rail-booking/internal/middleware"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/service"
	apperrors "go-rail-booking/pkg/app_errors"
	"go-rail-booking/pkg/logger"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.POST("bookings", h.CreateBooking)
		router.GET("bookings", h.ListBookings)
		router.GET("bookings/:id", h.GetBooking)
		router.PUT("bookings/:id/cancel", h.CancelBooking)
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.CreateBookingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	booking, err := h.service.Reserve(c, userID, req.TrainID, req.Seats)
	if err != nil {
		h.handleBookingError(c, err, "CreateBooking")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings accepts optional conjunctive filters: train_id, from, to
// (RFC 3339 timestamps on booked_at).
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var filter model.BookingFilter
	if raw := c.Query("train_id"); raw != "" {
		trainID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid train_id"})
			return
		}
		filter.TrainID = &trainID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp"})
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp"})
			return
		}
		filter.To = &to
	}

	bookings, err := h.service.ListForUser(c, userID, filter)
	if err != nil {
		h.handleBookingError(c, err, "ListBookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := h.service.GetForUser(c, userID, id)
	if err != nil {
		h.handleBookingError(c, err, "GetBooking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	if err := h.service.Cancel(c, userID, id); err != nil {
		h.handleBookingError(c, err, "CancelBooking")
		return
	}

	c.Status(http.StatusOK)
}

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		log.Warn("Insufficient seats")
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough seats available"})
	case errors.Is(err, apperrors.ErrTrainNotFound):
		log.Warn("Train not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, apperrors.ErrBookingNotActive):
		log.Warn("Booking not active")
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not active"})
	case errors.Is(err, apperrors.ErrTrainBusy):
		log.Warn("Train row busy")
		c.JSON(http.StatusConflict, gin.H{"error": "Train is busy, retry later"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
