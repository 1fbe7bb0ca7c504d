package ride

import "errors"

var (
	ErrRideNotFound     = errors.New("ride not found")
	ErrInvalidStatus    = errors.New("invalid status transition")
	ErrRideTaken        = errors.New("ride already taken by another driver")
	ErrNotRideOwner     = errors.New("ride belongs to another rider")
	ErrNotRideDriver    = errors.New("ride is assigned to another driver")
	ErrInvalidPayment   = errors.New("invalid payment method")
	ErrMissingEndpoints = errors.New("pickup and dropoff are both required")
)
