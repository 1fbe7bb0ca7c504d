package dto

import (
	"time"

	"github.com/google/uuid"
)

// SignUpRequest represents a registration submission
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=rider driver"`
}

// SignInRequest represents a login submission
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EndpointRequest is one end of a ride in a booking submission
type EndpointRequest struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BookRideRequest represents a booking submission. Mode decides which
// endpoint fields are consulted: manual bookings carry addresses, map
// bookings carry picked coordinates.
type BookRideRequest struct {
	Mode          string          `json:"mode" binding:"required,oneof=manual map"`
	Pickup        EndpointRequest `json:"pickup" binding:"required"`
	Dropoff       EndpointRequest `json:"dropoff" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash gcash paymaya"`
	ScheduledTime *time.Time      `json:"scheduled_time,omitempty"`
}

// RateRideRequest represents a rider rating a completed ride
type RateRideRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// UpdateProfileRequest represents a profile edit
type UpdateProfileRequest struct {
	Name      string  `json:"name" binding:"required"`
	Phone     string  `json:"phone" binding:"required"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// SavedLocationRequest represents saving a favorite location
type SavedLocationRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsHome    bool    `json:"is_home"`
	IsWork    bool    `json:"is_work"`
}

// PaymentMethodRequest represents adding a payment method
type PaymentMethodRequest struct {
	Type    string                 `json:"type" binding:"required,oneof=cash gcash paymaya"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// UpdateLocationRequest represents a driver location update
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// AuthResponse is returned on sign-up and sign-in
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Dashboard string    `json:"dashboard"`
}

// Error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
