package handler

import (
	"errors"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/service"
	apperrors "go-rail-booking/pkg/app_errors"
	"go-rail-booking/pkg/logger"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TrainHandler struct {
	service service.TrainService
}

func NewTrainHandler(service service.TrainService) *TrainHandler {
	return &TrainHandler{service: service}
}

// RegisterRoutes wires public reads and admin-only catalog mutations.
func (h *TrainHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("trains", h.List)
		router.GET("trains/search", h.SearchByRoute)
		router.GET("trains/:id", h.GetByID)
		router.POST("trains", auth, admin, h.Create)
		router.PUT("trains/:id", auth, admin, h.Update)
	}
}

type CreateTrainRequest struct {
	TrainNumber string  `json:"train_number" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Source      string  `json:"source" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	TotalSeats  int     `json:"total_seats" binding:"required,min=1"`
	TicketPrice float64 `json:"ticket_price" binding:"required"`
}

type UpdateTrainRequest struct {
	TrainNumber *string  `json:"train_number"`
	Name        *string  `json:"name"`
	Source      *string  `json:"source"`
	Destination *string  `json:"destination"`
	TotalSeats  *int     `json:"total_seats"`
	TicketPrice *float64 `json:"ticket_price"`
}

func (h *TrainHandler) List(c *gin.Context) {
	trains, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, trains)
}

func (h *TrainHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid train id"})
		return
	}

	train, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, train)
}

func (h *TrainHandler) SearchByRoute(c *gin.Context) {
	source := c.Query("source")
	destination := c.Query("destination")
	if source == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and destination are required"})
		return
	}

	trains, err := h.service.SearchByRoute(c, source, destination)
	if err != nil {
		h.handleError(c, err, "SearchByRoute")
		return
	}
	c.JSON(http.StatusOK, trains)
}

func (h *TrainHandler) Create(c *gin.Context) {
	var req CreateTrainRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	train := &model.Train{
		TrainNumber: req.TrainNumber,
		Name:        req.Name,
		Source:      req.Source,
		Destination: req.Destination,
		TotalSeats:  req.TotalSeats,
		TicketPrice: req.TicketPrice,
	}

	created, err := h.service.Create(c, train)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TrainHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid train id"})
		return
	}

	var req UpdateTrainRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTrainParams{
		TrainNumber: req.TrainNumber,
		Name:        req.Name,
		Source:      req.Source,
		Destination: req.Destination,
		TotalSeats:  req.TotalSeats,
		TicketPrice: req.TicketPrice,
	}

	updated, err := h.service.Update(c, id, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TrainHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTrainNotFound):
		log.Warn("Train not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
	case errors.Is(err, apperrors.ErrDuplicateTrainNumber):
		log.Warn("Duplicate train number")
		c.JSON(http.StatusConflict, gin.H{"error": "Train with this number already exists"})
	case errors.Is(err, apperrors.ErrInvalidSeatTotal):
		log.Warn("Seat total below committed bookings")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Total seats below committed bookings"})
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
