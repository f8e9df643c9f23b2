package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/skillswap-api/internal/models"
)

const reviewColumns = `id, swap_request_id, reviewer_id, reviewee_id, rating, teaching_quality, communication, reliability, comment, would_recommend, skill_taught, skill_learned, created_at`

// ReviewRepository provides database access for swap reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review and rolls the reviewee's rating aggregate
// forward in the same transaction. The unique (swap_request_id, reviewer_id)
// constraint surfaces as ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertQuery = `INSERT INTO reviews (id, swap_request_id, reviewer_id, reviewee_id, rating, teaching_quality, communication, reliability, comment, would_recommend, skill_taught, skill_learned, created_at)
		VALUES (:id, :swap_request_id, :reviewer_id, :reviewee_id, :rating, :teaching_quality, :communication, :reliability, :comment, :would_recommend, :skill_taught, :skill_learned, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, review); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create review: %w", err)
	}

	const rollupQuery = `UPDATE users
		SET average_rating = (average_rating * total_reviews + $2) / (total_reviews + 1),
		    total_reviews = total_reviews + 1,
		    updated_at = $3
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, rollupQuery, review.RevieweeID, review.Rating, time.Now().UTC()); err != nil {
		return fmt.Errorf("roll up reviewee rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}
	return nil
}

// FindByID returns a review by identifier.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 LIMIT 1`, reviewColumns)
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find review by id: %w", err)
	}
	return &review, nil
}

// ExistsForReviewer reports whether the actor already reviewed the swap.
func (r *ReviewRepository) ExistsForReviewer(ctx context.Context, swapRequestID, reviewerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE swap_request_id = $1 AND reviewer_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, swapRequestID, reviewerID); err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// ListForUser returns reviews received by a user with total count.
func (r *ReviewRepository) ListForUser(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int, error) {
	baseQuery := `FROM reviews WHERE reviewee_id = $1`
	args := []interface{}{filter.RevieweeID}

	if filter.MinRating != nil {
		baseQuery += fmt.Sprintf(" AND rating >= $%d", len(args)+1)
		args = append(args, *filter.MinRating)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", reviewColumns, baseQuery, pageSize, offset)

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	return reviews, total, nil
}

// Delete removes a review and reverses its rating roll-up, in one
// transaction. Admin moderation path.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete review tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var review models.Review
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 LIMIT 1`, reviewColumns)
	if err := tx.GetContext(ctx, &review, query, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("load review for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	const rollbackQuery = `UPDATE users
		SET average_rating = CASE WHEN total_reviews <= 1 THEN 0
		    ELSE (average_rating * total_reviews - $2) / (total_reviews - 1) END,
		    total_reviews = GREATEST(total_reviews - 1, 0),
		    updated_at = $3
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, rollbackQuery, review.RevieweeID, review.Rating, time.Now().UTC()); err != nil {
		return fmt.Errorf("reverse reviewee rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete review tx: %w", err)
	}
	return nil
}
