package apperrors

import "errors"

var (
	ErrTrainNotFound        = errors.New("train not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientSeats    = errors.New("not enough seats available")
	ErrDuplicateTrainNumber = errors.New("train with this number already exists")
	ErrUserAlreadyExists    = errors.New("username or email already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInsufficientRole     = errors.New("admin privileges required")
	ErrInvalidSeatTotal     = errors.New("total seats below committed bookings")
	ErrBookingNotActive     = errors.New("booking is not active")
	ErrTrainBusy            = errors.New("train row is locked, retry later")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServerError  = errors.New("internal server error")
)
