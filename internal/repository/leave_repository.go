package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/models"
)

const leaveColumns = `id, member_id, training_date, reason, status, decided_by, decided_at, created_at, updated_at`
const extendedLeaveColumns = `id, member_id, start_date, end_date, trainings_affected, reason, status, decided_by, decided_at, created_at, updated_at`

type LeaveRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLeaveRepository(db *sqlx.DB, logger *zap.Logger) *LeaveRepository {
	return &LeaveRepository{db: db, logger: logger}
}

func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (` + leaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if leave.ID == uuid.Nil {
		leave.ID = uuid.New()
	}
	if leave.Status == "" {
		leave.Status = models.LeaveStatusPending
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		leave.ID,
		leave.MemberID,
		leave.TrainingDate,
		leave.Reason,
		leave.Status,
		leave.DecidedBy,
		leave.DecidedAt,
		leave.CreatedAt,
		leave.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating leave request: %w", err)
	}
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	var leave models.LeaveRequest
	err := r.db.GetContext(ctx, &leave, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting leave request: %w", err)
	}
	return &leave, nil
}

func (r *LeaveRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE member_id = $1 ORDER BY training_date DESC`

	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, memberID); err != nil {
		return nil, fmt.Errorf("error listing leave requests: %w", err)
	}
	return leaves, nil
}

func (r *LeaveRepository) ListPendingByBrigade(ctx context.Context, brigadeID uuid.UUID) ([]models.LeaveRequest, error) {
	query := `
		SELECT lr.id, lr.member_id, lr.training_date, lr.reason, lr.status, lr.decided_by, lr.decided_at, lr.created_at, lr.updated_at
		FROM leave_requests lr
		JOIN members m ON m.id = lr.member_id
		WHERE m.brigade_id = $1 AND lr.status = $2
		ORDER BY lr.training_date`

	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, brigadeID, models.LeaveStatusPending); err != nil {
		return nil, fmt.Errorf("error listing pending leave requests: %w", err)
	}
	return leaves, nil
}

// HasActiveForDate reports whether the member already holds a pending or
// approved request for the training date. Checked before creation; the
// schema's partial unique index backs it under concurrency.
func (r *LeaveRepository) HasActiveForDate(ctx context.Context, memberID uuid.UUID, d dates.Date) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE member_id = $1 AND training_date = $2 AND status IN ($3, $4)
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, memberID, d, models.LeaveStatusPending, models.LeaveStatusApproved)
	if err != nil {
		return false, fmt.Errorf("error checking leave uniqueness: %w", err)
	}
	return exists, nil
}

// ActiveLeaveDates implements the leave-window calculator's view of the
// member's held dates.
func (r *LeaveRepository) ActiveLeaveDates(ctx context.Context, memberID uuid.UUID) (map[dates.Date]bool, error) {
	query := `
		SELECT training_date FROM leave_requests
		WHERE member_id = $1 AND status IN ($2, $3)`

	var held []dates.Date
	err := r.db.SelectContext(ctx, &held, query, memberID, models.LeaveStatusPending, models.LeaveStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("error loading active leave dates: %w", err)
	}

	out := make(map[dates.Date]bool, len(held))
	for _, d := range held {
		out[d] = true
	}
	return out, nil
}

// CountOpen returns the member's pending plus approved future requests,
// the quota the request layer enforces.
func (r *LeaveRepository) CountOpen(ctx context.Context, memberID uuid.UUID, onOrAfter dates.Date) (int, error) {
	query := `
		SELECT COUNT(*) FROM leave_requests
		WHERE member_id = $1 AND training_date >= $2 AND status IN ($3, $4)`

	var count int
	err := r.db.GetContext(ctx, &count, query, memberID, onOrAfter, models.LeaveStatusPending, models.LeaveStatusApproved)
	if err != nil {
		return 0, fmt.Errorf("error counting open leave requests: %w", err)
	}
	return count, nil
}

// Transition applies a status change guarded by the pending state, so
// concurrent approve/deny/cancel calls have at most one winner.
func (r *LeaveRepository) Transition(ctx context.Context, id uuid.UUID, to models.LeaveStatus, decidedBy uuid.UUID) error {
	query := `
		UPDATE leave_requests
		SET status = $1, decided_by = $2, decided_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`

	now := time.Now()
	decider := uuid.NullUUID{UUID: decidedBy, Valid: decidedBy != uuid.Nil}
	result, err := r.db.ExecContext(ctx, query, to, decider, now, id, models.LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("error transitioning leave request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrLeaveNotPending
	}
	return nil
}

func (r *LeaveRepository) CreateExtended(ctx context.Context, leave *models.ExtendedLeaveRequest) error {
	query := `
		INSERT INTO extended_leave_requests (` + extendedLeaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if leave.ID == uuid.Nil {
		leave.ID = uuid.New()
	}
	if leave.Status == "" {
		leave.Status = models.LeaveStatusPending
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		leave.ID,
		leave.MemberID,
		leave.StartDate,
		leave.EndDate,
		leave.TrainingsAffected,
		leave.Reason,
		leave.Status,
		leave.DecidedBy,
		leave.DecidedAt,
		leave.CreatedAt,
		leave.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating extended leave request: %w", err)
	}
	return nil
}

func (r *LeaveRepository) GetExtendedByID(ctx context.Context, id uuid.UUID) (*models.ExtendedLeaveRequest, error) {
	query := `SELECT ` + extendedLeaveColumns + ` FROM extended_leave_requests WHERE id = $1`

	var leave models.ExtendedLeaveRequest
	err := r.db.GetContext(ctx, &leave, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting extended leave request: %w", err)
	}
	return &leave, nil
}

func (r *LeaveRepository) ListExtendedByMember(ctx context.Context, memberID uuid.UUID) ([]models.ExtendedLeaveRequest, error) {
	query := `SELECT ` + extendedLeaveColumns + ` FROM extended_leave_requests WHERE member_id = $1 ORDER BY start_date DESC`

	var leaves []models.ExtendedLeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, memberID); err != nil {
		return nil, fmt.Errorf("error listing extended leave requests: %w", err)
	}
	return leaves, nil
}

// HasOverlappingExtended reports whether the member holds a pending or
// approved extended request whose range intersects [start, end].
func (r *LeaveRepository) HasOverlappingExtended(ctx context.Context, memberID uuid.UUID, start, end dates.Date) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM extended_leave_requests
			WHERE member_id = $1 AND status IN ($2, $3)
			AND start_date <= $5 AND end_date >= $4
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, memberID, models.LeaveStatusPending, models.LeaveStatusApproved, start, end)
	if err != nil {
		return false, fmt.Errorf("error checking extended leave overlap: %w", err)
	}
	return exists, nil
}

// TransitionExtended mirrors Transition for extended requests.
func (r *LeaveRepository) TransitionExtended(ctx context.Context, id uuid.UUID, to models.LeaveStatus, decidedBy uuid.UUID) error {
	query := `
		UPDATE extended_leave_requests
		SET status = $1, decided_by = $2, decided_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`

	now := time.Now()
	decider := uuid.NullUUID{UUID: decidedBy, Valid: decidedBy != uuid.Nil}
	result, err := r.db.ExecContext(ctx, query, to, decider, now, id, models.LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("error transitioning extended leave request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrLeaveNotPending
	}
	return nil
}
