package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/review"
)

// ReviewRepository implements review.Repository on PostgreSQL
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert keeps one review per ride: a re-submission replaces rating and
// comment instead of inserting a duplicate row. On conflict the stored
// row keeps its original id, so the id and created_at are read back
// into rev.
func (r *ReviewRepository) Upsert(ctx context.Context, rev *review.Review) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, ride_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (ride_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment
		RETURNING id, created_at
	`, rev.ID, rev.RideID, rev.ReviewerID, rev.RevieweeID, rev.Rating, rev.Comment).Scan(&rev.ID, &rev.CreatedAt)
}

func (r *ReviewRepository) GetByRideID(ctx context.Context, rideID uuid.UUID) (*review.Review, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, ride_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews
		WHERE ride_id = $1
	`, rideID)

	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrReviewNotFound
	}
	return rev, err
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*review.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ride_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
	`, revieweeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*review.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func scanReview(row rowScanner) (*review.Review, error) {
	var rev review.Review
	var comment sql.NullString
	if err := row.Scan(&rev.ID, &rev.RideID, &rev.ReviewerID, &rev.RevieweeID, &rev.Rating, &comment, &rev.CreatedAt); err != nil {
		return nil, err
	}
	if comment.Valid {
		rev.Comment = &comment.String
	}
	return &rev, nil
}
