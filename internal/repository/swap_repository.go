package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/skillswap-api/internal/models"
)

const swapColumns = `id, requester_id, recipient_id, skill_offered, skill_wanted, learning_mode, message, estimated_hours, timeframe, schedule, meeting_details, priority, status, accepted_at, rejected_at, completed_at, cancelled_at, response_by, cancellation_reason, created_at, updated_at`

// SwapRepository provides database access for swap requests. All transitions
// are conditional updates guarded by the expected prior status so that at
// most one writer wins per record.
type SwapRepository struct {
	db *sqlx.DB
}

// NewSwapRepository creates a new instance of SwapRepository.
func NewSwapRepository(db *sqlx.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

// FindByID returns a swap request by identifier.
func (r *SwapRepository) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM swap_requests WHERE id = $1 LIMIT 1`, swapColumns)
	var req models.SwapRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find swap by id: %w", err)
	}
	return &req, nil
}

// Create inserts a new pending swap request.
func (r *SwapRepository) Create(ctx context.Context, req *models.SwapRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO swap_requests (id, requester_id, recipient_id, skill_offered, skill_wanted, learning_mode, message, estimated_hours, timeframe, schedule, meeting_details, priority, status, response_by, cancellation_reason, created_at, updated_at)
		VALUES (:id, :requester_id, :recipient_id, :skill_offered, :skill_wanted, :learning_mode, :message, :estimated_hours, :timeframe, :schedule, :meeting_details, :priority, :status, :response_by, :cancellation_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create swap: %w", err)
	}
	return nil
}

// HasPendingDuplicate reports whether an identical pending (requester,
// recipient, skills) request already exists.
func (r *SwapRepository) HasPendingDuplicate(ctx context.Context, requesterID, recipientID, skillOffered, skillWanted string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM swap_requests WHERE requester_id = $1 AND recipient_id = $2 AND skill_offered = $3 AND skill_wanted = $4 AND status = 'pending')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, requesterID, recipientID, skillOffered, skillWanted); err != nil {
		return false, fmt.Errorf("check pending duplicate: %w", err)
	}
	return exists, nil
}

// Accept transitions pending -> accepted, setting accepted_at and optional
// meeting details. Returns false when the guard misses (another writer won
// or the record is gone).
func (r *SwapRepository) Accept(ctx context.Context, id string, meetingDetails string, now time.Time) (bool, error) {
	const query = `UPDATE swap_requests
		SET status = 'accepted', accepted_at = $2,
		    meeting_details = CASE WHEN $3 <> '' THEN $3 ELSE meeting_details END,
		    updated_at = $2
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, now, meetingDetails)
	if err != nil {
		return false, fmt.Errorf("accept swap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("accept swap rows affected: %w", err)
	}
	return affected == 1, nil
}

// Reject transitions pending -> rejected, recording the optional reason.
func (r *SwapRepository) Reject(ctx context.Context, id string, reason string, now time.Time) (bool, error) {
	const query = `UPDATE swap_requests
		SET status = 'rejected', rejected_at = $2, cancellation_reason = $3, updated_at = $2
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, now, reason)
	if err != nil {
		return false, fmt.Errorf("reject swap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reject swap rows affected: %w", err)
	}
	return affected == 1, nil
}

// Cancel transitions pending|accepted -> cancelled, recording the optional
// reason.
func (r *SwapRepository) Cancel(ctx context.Context, id string, reason string, now time.Time) (bool, error) {
	const query = `UPDATE swap_requests
		SET status = 'cancelled', cancelled_at = $2, cancellation_reason = $3, updated_at = $2
		WHERE id = $1 AND status IN ('pending', 'accepted')`
	res, err := r.db.ExecContext(ctx, query, id, now, reason)
	if err != nil {
		return false, fmt.Errorf("cancel swap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel swap rows affected: %w", err)
	}
	return affected == 1, nil
}

// Complete transitions accepted -> completed and bumps both parties' swap
// counters inside one transaction. The guarded status update and the counter
// increments commit together or not at all.
func (r *SwapRepository) Complete(ctx context.Context, id, requesterID, recipientID string, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const statusQuery = `UPDATE swap_requests
		SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'accepted'`
	res, err := tx.ExecContext(ctx, statusQuery, id, now)
	if err != nil {
		return false, fmt.Errorf("complete swap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete swap rows affected: %w", err)
	}
	if affected != 1 {
		return false, nil
	}

	const counterQuery = `UPDATE users
		SET total_swaps = total_swaps + 1, successful_swaps = successful_swaps + 1, updated_at = $3
		WHERE id IN ($1, $2)`
	if _, err := tx.ExecContext(ctx, counterQuery, requesterID, recipientID, now); err != nil {
		return false, fmt.Errorf("bump swap counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit complete tx: %w", err)
	}
	return true, nil
}

// UpdateTerms persists the whitelist-mergeable fields. Guarded on
// non-terminal status so a concurrent transition cannot be overwritten.
func (r *SwapRepository) UpdateTerms(ctx context.Context, req *models.SwapRequest) (bool, error) {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE swap_requests
		SET message = :message, estimated_hours = :estimated_hours, timeframe = :timeframe,
		    schedule = :schedule, meeting_details = :meeting_details, priority = :priority,
		    updated_at = :updated_at
		WHERE id = :id AND status IN ('pending', 'accepted')`
	res, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return false, fmt.Errorf("update swap terms: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update swap terms rows affected: %w", err)
	}
	return affected == 1, nil
}

// Delete hard-deletes a request, guarded on requester identity and pending
// status.
func (r *SwapRepository) Delete(ctx context.Context, id, requesterID string) (bool, error) {
	const query = `DELETE FROM swap_requests WHERE id = $1 AND requester_id = $2 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, requesterID)
	if err != nil {
		return false, fmt.Errorf("delete swap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete swap rows affected: %w", err)
	}
	return affected == 1, nil
}

// DeletePendingForUser removes all pending requests where the user is a
// party. Used when an admin bans an account.
func (r *SwapRepository) DeletePendingForUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM swap_requests WHERE status = 'pending' AND (requester_id = $1 OR recipient_id = $1)`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete pending swaps for user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete pending swaps rows affected: %w", err)
	}
	return affected, nil
}

// RejectExpired moves pending requests past their response deadline to
// rejected. Only invoked by the opt-in expiry sweeper.
func (r *SwapRepository) RejectExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE swap_requests
		SET status = 'rejected', rejected_at = $1, cancellation_reason = 'response deadline elapsed', updated_at = $1
		WHERE status = 'pending' AND response_by < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("reject expired swaps: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reject expired rows affected: %w", err)
	}
	return affected, nil
}

// List returns swap requests based on filters with total count.
func (r *SwapRepository) List(ctx context.Context, filter models.SwapFilter) ([]models.SwapRequest, int, error) {
	baseQuery := `FROM swap_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		idx := len(args) + 1
		switch filter.Role {
		case "sent":
			conditions = append(conditions, fmt.Sprintf("requester_id = $%d", idx))
		case "received":
			conditions = append(conditions, fmt.Sprintf("recipient_id = $%d", idx))
		default:
			conditions = append(conditions, fmt.Sprintf("(requester_id = $%d OR recipient_id = $%d)", idx, idx))
		}
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.LearningMode != nil {
		conditions = append(conditions, fmt.Sprintf("learning_mode = $%d", len(args)+1))
		args = append(args, *filter.LearningMode)
	}
	if filter.Skill != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(skill_offered) LIKE $%d OR LOWER(skill_wanted) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Skill)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":  true,
		"updated_at":  true,
		"response_by": true,
		"priority":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", swapColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var reqs []models.SwapRequest
	if err := r.db.SelectContext(ctx, &reqs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list swaps: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count swaps: %w", err)
	}

	return reqs, total, nil
}
