package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/payment"
)

// PaymentRepository implements payment.Repository on PostgreSQL
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment method repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, m *payment.Method) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_methods (id, user_id, type, details, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, m.ID, m.UserID, string(m.Type), []byte(m.Details), m.IsDefault)
	return err
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.Method, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, details, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*payment.Method
	for rows.Next() {
		var m payment.Method
		var details []byte
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &details, &m.IsDefault, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Details = details
		methods = append(methods, &m)
	}
	return methods, rows.Err()
}

// SetDefault flips the default flag in one transaction so there is
// never a window with two defaults for the same user.
func (r *PaymentRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin default-flag transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE payment_methods SET is_default = FALSE
		WHERE user_id = $1 AND is_default = TRUE
	`, userID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payment_methods SET is_default = TRUE
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payment.ErrMethodNotFound
	}

	return tx.Commit()
}

func (r *PaymentRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM payment_methods WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payment.ErrMethodNotFound
	}
	return nil
}
