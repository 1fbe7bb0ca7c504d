package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type mirrors the ride payment methods a method row can represent.
type Type string

const (
	TypeCash    Type = "cash"
	TypeGCash   Type = "gcash"
	TypePayMaya Type = "paymaya"
)

// IsValid validates the payment method type
func (t Type) IsValid() bool {
	switch t {
	case TypeCash, TypeGCash, TypePayMaya:
		return true
	}
	return false
}

// Method is a user-owned payment method record. Details holds
// provider-specific fields (account number, label) as opaque JSON.
type Method struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      Type            `json:"type"`
	Details   json.RawMessage `json:"details,omitempty"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository defines the interface for payment method access
type Repository interface {
	Create(ctx context.Context, m *Method) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Method, error)

	// SetDefault marks one method as default and clears the flag on the
	// user's other methods inside a single transaction.
	SetDefault(ctx context.Context, id, userID uuid.UUID) error

	Delete(ctx context.Context, id, userID uuid.UUID) error
}

var (
	ErrMethodNotFound = errors.New("payment method not found")
	ErrInvalidType    = errors.New("invalid payment method type")
)
